package notify

import (
	"fmt"

	"lastmile/internal/core/domain/model/chat"
	"lastmile/internal/core/domain/model/event"
)

// staffText renders the staff broadcast line for e. Location pings and the
// staff's own chat messages are not broadcast.
func staffText(e event.Event) (string, bool) {
	switch p := e.Payload.(type) {
	case event.RoutePayload:
		switch e.Type {
		case event.RouteStarted:
			return fmt.Sprintf("🚚 Ruta %s iniciada", short(p.RouteID)), true
		case event.RouteCompleted:
			return fmt.Sprintf("🏁 Ruta %s completada", short(p.RouteID)), true
		default:
			return "", false
		}
	case event.DeliveryCompletedPayload:
		return fmt.Sprintf("✅ Pedido %s entregado", short(p.OrderID)), true
	case event.DeliveryFailedPayload:
		return fmt.Sprintf("❌ Pedido %s no entregado: %s", short(p.OrderID), p.FailureReason), true
	case event.OrderConfirmedPayload:
		return fmt.Sprintf("🛍️ Pedido %s confirmado por $%s", short(p.OrderID), p.Total), true
	case event.ChatPayload:
		if p.Sender == chat.Admin.String() {
			return "", false
		}
		return fmt.Sprintf("💬 Repartidor (ruta %s): %s", short(p.RouteID), p.Text), true
	default:
		return "", false
	}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
