package queries

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetChatHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetChatHistoryQueryHandler(db *gorm.DB) GetChatHistoryQueryHandler {
	return GetChatHistoryQueryHandler{db: db}
}

// Handle returns the messages of the channel. A customer whose order is not
// on a route has an empty channel; an expired link fails with errs.ExpiredError.
func (h GetChatHistoryQueryHandler) Handle(ctx context.Context, query GetChatHistoryQuery) ([]ChatMessageView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	routeID, deliveryID, err := h.channel(db, query)
	if err != nil {
		return nil, err
	}
	if routeID == uuid.Nil {
		return []ChatMessageView{}, nil
	}

	filter, args := "m.delivery_id IS NULL", []any{routeID}
	if deliveryID.Valid {
		filter, args = "m.delivery_id = ?", append(args, deliveryID.UUID)
	}

	rows, err := db.Raw(`
		SELECT m.id, m.route_id, m.delivery_id, m.sender, m.text, m.sent_at
		FROM chat_messages m
		WHERE m.route_id = ? AND `+filter+`
		ORDER BY m.sent_at, m.id
	`, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]ChatMessageView, 0)
	for rows.Next() {
		var (
			m          ChatMessageView
			id, route  uuid.UUID
			deliveryID uuid.NullUUID
		)
		if err = rows.Scan(&id, &route, &deliveryID, &m.Sender, &m.Text, &m.SentAt); err != nil {
			return nil, err
		}
		if m.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if m.RouteID, err = kernel.UUIDFromBytes(route[:]); err != nil {
			return nil, err
		}
		if deliveryID.Valid {
			stop, idErr := kernel.UUIDFromBytes(deliveryID.UUID[:])
			if idErr != nil {
				return nil, idErr
			}
			m.DeliveryID = &stop
		}
		messages = append(messages, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// channel resolves the route and, for stop channels, the delivery. A zero
// route id means the channel does not exist yet.
func (h GetChatHistoryQueryHandler) channel(db *gorm.DB, query GetChatHistoryQuery) (uuid.UUID, uuid.NullUUID, error) {
	switch {
	case !query.accessToken.IsEmpty():
		return h.customerChannel(db, query.accessToken)
	case !query.driverToken.IsEmpty():
		var ids []uuid.UUID
		if err := db.Table("delivery_routes").Where("driver_token = ?", query.driverToken.String()).
			Pluck("id", &ids).Error; err != nil {
			return uuid.Nil, uuid.NullUUID{}, err
		}
		if len(ids) == 0 {
			return uuid.Nil, uuid.NullUUID{}, errs.NewObjectNotFoundError("route", query.driverToken.Prefix(8))
		}
		var stop uuid.NullUUID
		if query.deliveryID != nil {
			stop = uuid.NullUUID{UUID: query.deliveryID.Bytes(), Valid: true}
		}
		return ids[0], stop, nil
	default:
		var count int64
		if err := db.Table("delivery_routes").Where("id = ?", query.routeID.Bytes()).Count(&count).Error; err != nil {
			return uuid.Nil, uuid.NullUUID{}, err
		}
		if count == 0 {
			return uuid.Nil, uuid.NullUUID{}, errs.NewObjectNotFoundError("route", query.routeID.String())
		}
		return query.routeID.Bytes(), uuid.NullUUID{}, nil
	}
}

func (h GetChatHistoryQueryHandler) customerChannel(db *gorm.DB, token kernel.Token) (uuid.UUID, uuid.NullUUID, error) {
	rows, err := db.Raw(`
		SELECT o.expires_at, d.route_id, d.id
		FROM orders o
		LEFT JOIN deliveries d ON d.order_id = o.id AND d.route_id = o.delivery_route_id
		WHERE o.access_token = ?
	`, token.String()).Rows()
	if err != nil {
		return uuid.Nil, uuid.NullUUID{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return uuid.Nil, uuid.NullUUID{}, err
		}
		return uuid.Nil, uuid.NullUUID{}, errs.NewObjectNotFoundError("order", token.Prefix(8))
	}

	var (
		expiresAt       time.Time
		routeID, stopID uuid.NullUUID
	)
	if err = rows.Scan(&expiresAt, &routeID, &stopID); err != nil {
		return uuid.Nil, uuid.NullUUID{}, err
	}
	if time.Now().After(expiresAt) {
		return uuid.Nil, uuid.NullUUID{}, errs.NewExpiredError("accessToken", token.Prefix(8))
	}
	if !routeID.Valid || !stopID.Valid {
		return uuid.Nil, uuid.NullUUID{}, nil
	}
	return routeID.UUID, stopID, nil
}
