package services

import (
	"lastmile/internal/core/domain/model/chat"
	"lastmile/internal/core/domain/model/event"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
)

// ChatFanOut addresses chat messages.
//
// Route channel messages (no delivery) reach the driver and staff as
// ReceiveChatMessage. Stop channel messages reach the stop's customer and
// the driver as ReceiveClientChatMessage. The sender's own group also
// receives the message so every open session of the sender stays in sync.
type ChatFanOut struct{}

func NewChatFanOut() ChatFanOut {
	return ChatFanOut{}
}

// Events returns the notifications for m. o is the stop's order and may be
// nil on the route channel.
func (ChatFanOut) Events(m *chat.Message, r *route.Route, o *order.Order) []event.Event {
	payload := event.ChatPayload{
		ID:        m.ID().String(),
		RouteID:   m.RouteID().String(),
		Sender:    m.Sender().String(),
		Text:      m.Text(),
		Timestamp: m.SentAt(),
	}

	if !m.IsCustomerChannel() || o == nil {
		driver := event.ForDriver(r.DriverToken(), event.ReceiveChatMessage, payload)
		if m.Sender() == chat.Admin {
			driver = driver.WithPush(event.Push{Title: "Mensaje de la tienda", Body: m.Text(), RouteToken: r.DriverToken()})
		}
		return []event.Event{driver, event.ForStaff(event.ReceiveChatMessage, payload)}
	}

	deliveryID := m.DeliveryID().String()
	payload.DeliveryID = &deliveryID

	driver := event.ForDriver(r.DriverToken(), event.ReceiveClientChatMessage, payload)
	customer := event.ForCustomer(o.AccessToken(), event.ReceiveClientChatMessage, payload)
	switch m.Sender() {
	case chat.Client:
		driver = driver.WithPush(event.Push{Title: "Mensaje de tu clienta", Body: m.Text(), RouteToken: r.DriverToken()})
	case chat.Driver:
		clientID := o.ClientID()
		customer = customer.WithPush(event.Push{
			Title:    "Mensaje del repartidor",
			Body:     m.Text(),
			Link:     customerLinkPrefix + o.AccessToken().String(),
			ClientID: &clientID,
		})
	default:
	}
	return []event.Event{customer, driver}
}
