package http

import (
	"encoding/json"
	"time"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/chat"
	"lastmile/internal/core/domain/model/kernel"
)

// Request bodies.

type CreateRouteRequest struct {
	OrderIDs []string `json:"orderIds"`
}

type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type ChatRequest struct {
	Text       string  `json:"text"`
	DeliveryID *string `json:"deliveryId,omitempty"`
}

type OrderItemRequest struct {
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice json.Number `json:"unitPrice"`
}

type CreateOrderRequest struct {
	Name      string             `json:"name"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	OrderType string             `json:"orderType"`
	Items     []OrderItemRequest `json:"items"`
}

type ChangeOrderStatusRequest struct {
	Status        string     `json:"status,omitempty"`
	OrderType     string     `json:"orderType,omitempty"`
	PostponedAt   *time.Time `json:"postponedAt,omitempty"`
	PostponedNote string     `json:"postponedNote,omitempty"`
}

// UpdateClientRequest replaces the contact data. A blank category keeps the
// current one.
type UpdateClientRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Category string `json:"category,omitempty"`
}

type AdjustLoyaltyRequest struct {
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

type SubscribeRequest struct {
	Role        string `json:"role"`
	DeviceToken string `json:"deviceToken"`
	Token       string `json:"token,omitempty"`
}

// Responses.

type Location struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	LastUpdate time.Time `json:"lastUpdate"`
}

type RouteSummary struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	DriverToken     string     `json:"driverToken"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	StartedAt       *time.Time `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt"`
	TotalDeliveries int        `json:"totalDeliveries"`
	Delivered       int        `json:"delivered"`
	Failed          int        `json:"failed"`
}

type RouteStop struct {
	ID            string      `json:"id"`
	OrderID       string      `json:"orderId"`
	SortOrder     int         `json:"sortOrder"`
	Status        string      `json:"status"`
	ClientName    string      `json:"clientName"`
	ClientPhone   string      `json:"clientPhone"`
	ClientAddress string      `json:"clientAddress"`
	Total         json.Number `json:"total"`
	DeliveredAt   *time.Time  `json:"deliveredAt"`
	Notes         string      `json:"notes,omitempty"`
	FailureReason string      `json:"failureReason,omitempty"`
	EvidenceURLs  []string    `json:"evidenceUrls"`
}

type Route struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	DriverToken string      `json:"driverToken"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	StartedAt   *time.Time  `json:"startedAt"`
	CompletedAt *time.Time  `json:"completedAt"`
	Location    *Location   `json:"currentLocation"`
	Deliveries  []RouteStop `json:"deliveries"`
}

type CustomerItem struct {
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice json.Number `json:"unitPrice"`
	LineTotal json.Number `json:"lineTotal"`
}

type CustomerOrder struct {
	OrderID           string         `json:"orderId"`
	ClientName        string         `json:"clientName"`
	OrderType         string         `json:"orderType"`
	Status            string         `json:"status"`
	Items             []CustomerItem `json:"items"`
	Subtotal          json.Number    `json:"subtotal"`
	ShippingCost      json.Number    `json:"shippingCost"`
	Total             json.Number    `json:"total"`
	ExpiresAt         time.Time      `json:"expiresAt"`
	QueuePosition     *int           `json:"queuePosition"`
	TotalDeliveries   *int           `json:"totalDeliveries"`
	DeliveriesAhead   *int           `json:"deliveriesAhead"`
	IsCurrentDelivery bool           `json:"isCurrentDelivery"`
	DriverLocation    *Location      `json:"driverLocation"`
}

type ChatMessage struct {
	ID         string    `json:"id"`
	RouteID    string    `json:"routeId"`
	DeliveryID *string   `json:"deliveryId"`
	Sender     string    `json:"sender"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

type PlacedOrder struct {
	OrderID     string      `json:"orderId"`
	AccessToken string      `json:"accessToken"`
	Total       json.Number `json:"total"`
	Merged      bool        `json:"merged"`
}

type LoyaltySummary struct {
	ClientID         string `json:"clientId"`
	Name             string `json:"name"`
	Category         string `json:"category"`
	CurrentPoints    int    `json:"currentPoints"`
	LifetimePoints   int    `json:"lifetimePoints"`
	Tier             string `json:"tier"`
	NextTier         string `json:"nextTier,omitempty"`
	PointsToNextTier int    `json:"pointsToNextTier"`
}

type LoyaltyEntry struct {
	ID     string    `json:"id"`
	Points int       `json:"points"`
	Reason string    `json:"reason"`
	Date   time.Time `json:"date"`
}

func money(m kernel.Money) json.Number {
	return json.Number(m.String())
}

func location(l *queries.DriverLocation) *Location {
	if l == nil {
		return nil
	}
	return &Location{Latitude: l.Latitude, Longitude: l.Longitude, LastUpdate: l.LastUpdate}
}

func toRouteSummaries(summaries []queries.RouteSummary) []RouteSummary {
	out := make([]RouteSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, RouteSummary{
			ID:              s.ID.String(),
			Name:            s.Name,
			DriverToken:     s.DriverToken.String(),
			Status:          s.Status.String(),
			CreatedAt:       s.CreatedAt,
			StartedAt:       s.StartedAt,
			CompletedAt:     s.CompletedAt,
			TotalDeliveries: s.TotalDeliveries,
			Delivered:       s.Delivered,
			Failed:          s.Failed,
		})
	}
	return out
}

func toRoute(v queries.RouteView) Route {
	stops := make([]RouteStop, 0, len(v.Deliveries))
	for _, d := range v.Deliveries {
		evidence := d.EvidenceURLs
		if evidence == nil {
			evidence = []string{}
		}
		stops = append(stops, RouteStop{
			ID:            d.DeliveryID.String(),
			OrderID:       d.OrderID.String(),
			SortOrder:     d.SortOrder,
			Status:        d.Status.String(),
			ClientName:    d.ClientName,
			ClientPhone:   d.ClientPhone,
			ClientAddress: d.ClientAddress,
			Total:         money(d.Total),
			DeliveredAt:   d.DeliveredAt,
			Notes:         d.Notes,
			FailureReason: d.FailureReason,
			EvidenceURLs:  evidence,
		})
	}

	return Route{
		ID:          v.ID.String(),
		Name:        v.Name,
		DriverToken: v.DriverToken.String(),
		Status:      v.Status.String(),
		CreatedAt:   v.CreatedAt,
		StartedAt:   v.StartedAt,
		CompletedAt: v.CompletedAt,
		Location:    location(v.Location),
		Deliveries:  stops,
	}
}

func toCustomerOrder(v queries.CustomerView) CustomerOrder {
	items := make([]CustomerItem, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, CustomerItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: money(item.UnitPrice),
			LineTotal: money(item.LineTotal),
		})
	}

	return CustomerOrder{
		OrderID:           v.OrderID.String(),
		ClientName:        v.ClientName,
		OrderType:         v.OrderType.String(),
		Status:            v.Status,
		Items:             items,
		Subtotal:          money(v.Subtotal),
		ShippingCost:      money(v.ShippingCost),
		Total:             money(v.Total),
		ExpiresAt:         v.ExpiresAt,
		QueuePosition:     v.QueuePosition,
		TotalDeliveries:   v.TotalDeliveries,
		DeliveriesAhead:   v.DeliveriesAhead,
		IsCurrentDelivery: v.IsCurrentDelivery,
		DriverLocation:    location(v.DriverLocation),
	}
}

func toChatMessages(views []queries.ChatMessageView) []ChatMessage {
	out := make([]ChatMessage, 0, len(views))
	for _, v := range views {
		out = append(out, ChatMessage{
			ID:         v.ID.String(),
			RouteID:    v.RouteID.String(),
			DeliveryID: idString(v.DeliveryID),
			Sender:     v.Sender.String(),
			Text:       v.Text,
			SentAt:     v.SentAt,
		})
	}
	return out
}

func toChatMessage(m *chat.Message) ChatMessage {
	return ChatMessage{
		ID:         m.ID().String(),
		RouteID:    m.RouteID().String(),
		DeliveryID: idString(m.DeliveryID()),
		Sender:     m.Sender().String(),
		Text:       m.Text(),
		SentAt:     m.SentAt(),
	}
}

func toPlacedOrder(p commands.PlacedOrder) PlacedOrder {
	return PlacedOrder{
		OrderID:     p.OrderID.String(),
		AccessToken: p.AccessToken.String(),
		Total:       money(p.Total),
		Merged:      p.Merged,
	}
}

func toLoyaltySummary(s queries.LoyaltySummary) LoyaltySummary {
	return LoyaltySummary{
		ClientID:         s.ClientID.String(),
		Name:             s.Name,
		Category:         s.Category,
		CurrentPoints:    s.CurrentPoints,
		LifetimePoints:   s.LifetimePoints,
		Tier:             s.Tier,
		NextTier:         s.NextTier,
		PointsToNextTier: s.PointsToNextTier,
	}
}

func toLoyaltyEntries(entries []queries.LoyaltyEntry) []LoyaltyEntry {
	out := make([]LoyaltyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, LoyaltyEntry{ID: e.ID.String(), Points: e.Points, Reason: e.Reason, Date: e.Date})
	}
	return out
}

func idString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
