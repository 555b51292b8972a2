package queries

import (
	"context"
	"database/sql"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetCustomerViewQueryHandler struct {
	db *gorm.DB
}

func NewGetCustomerViewQueryHandler(db *gorm.DB) GetCustomerViewQueryHandler {
	return GetCustomerViewQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError for an unknown link and
// errs.ExpiredError once the link expired, whatever the delivery progress.
func (h GetCustomerViewQueryHandler) Handle(ctx context.Context, query GetCustomerViewQuery) (CustomerView, error) {
	if err := query.Validate(); err != nil {
		return CustomerView{}, err
	}

	db := h.db.WithContext(ctx)
	view, orderID, routeID, err := h.order(db, query.AccessToken())
	if err != nil {
		return CustomerView{}, err
	}
	if time.Now().After(view.ExpiresAt) {
		return CustomerView{}, errs.NewExpiredError("accessToken", query.AccessToken().Prefix(8))
	}

	if view.Items, err = h.items(db, orderID); err != nil {
		return CustomerView{}, err
	}
	if routeID.Valid {
		if err = h.queue(db, &view, orderID, routeID.UUID); err != nil {
			return CustomerView{}, err
		}
	}
	return view, nil
}

func (h GetCustomerViewQueryHandler) order(
	db *gorm.DB,
	token kernel.Token,
) (CustomerView, uuid.UUID, uuid.NullUUID, error) {
	rows, err := db.Raw(`
		SELECT
			o.id,
			o.delivery_route_id,
			c.name,
			o.order_type,
			o.status,
			o.subtotal,
			o.shipping_cost,
			o.total,
			o.expires_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.access_token = ?
	`, token.String()).Rows()
	if err != nil {
		return CustomerView{}, uuid.Nil, uuid.NullUUID{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return CustomerView{}, uuid.Nil, uuid.NullUUID{}, err
		}
		return CustomerView{}, uuid.Nil, uuid.NullUUID{}, errs.NewObjectNotFoundError("order", token.Prefix(8))
	}

	var (
		view                      CustomerView
		id                        uuid.UUID
		routeID                   uuid.NullUUID
		status                    order.Status
		subtotal, shipping, total decimal.Decimal
	)
	if err = rows.Scan(&id, &routeID, &view.ClientName, &view.OrderType, &status,
		&subtotal, &shipping, &total, &view.ExpiresAt); err != nil {
		return CustomerView{}, uuid.Nil, uuid.NullUUID{}, err
	}

	if view.OrderID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return CustomerView{}, uuid.Nil, uuid.NullUUID{}, err
	}
	if view.Subtotal, err = kernel.NewMoney(subtotal); err != nil {
		return CustomerView{}, uuid.Nil, uuid.NullUUID{}, err
	}
	if view.ShippingCost, err = kernel.NewMoney(shipping); err != nil {
		return CustomerView{}, uuid.Nil, uuid.NullUUID{}, err
	}
	if view.Total, err = kernel.NewMoney(total); err != nil {
		return CustomerView{}, uuid.Nil, uuid.NullUUID{}, err
	}
	view.Status = status.String()
	return view, id, routeID, nil
}

func (h GetCustomerViewQueryHandler) items(db *gorm.DB, orderID uuid.UUID) ([]CustomerItemView, error) {
	rows, err := db.Raw(`
		SELECT name, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = ?
		ORDER BY position
	`, orderID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]CustomerItemView, 0)
	for rows.Next() {
		var (
			item             CustomerItemView
			price, lineTotal decimal.Decimal
		)
		if err = rows.Scan(&item.Name, &item.Quantity, &price, &lineTotal); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = kernel.NewMoney(price); err != nil {
			return nil, err
		}
		if item.LineTotal, err = kernel.NewMoney(lineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// queue fills the stop position and, for the stop in transit, the
// InTransit status override and the driver position.
func (h GetCustomerViewQueryHandler) queue(db *gorm.DB, view *CustomerView, orderID, routeID uuid.UUID) error {
	rows, err := db.Raw(`
		SELECT
			d.sort_order,
			d.status,
			r.status,
			r.current_latitude,
			r.current_longitude,
			r.last_location_update,
			(SELECT COUNT(*) FROM deliveries t WHERE t.route_id = d.route_id),
			(SELECT COUNT(*) FROM deliveries a
				WHERE a.route_id = d.route_id AND a.sort_order < d.sort_order AND a.status IN ?)
		FROM deliveries d
		JOIN delivery_routes r ON r.id = d.route_id
		WHERE d.route_id = ? AND d.order_id = ?
	`, []route.DeliveryStatus{route.DeliveryPending, route.DeliveryInTransit}, routeID, orderID).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		return rows.Err()
	}

	var (
		position, total, ahead int
		stopStatus             route.DeliveryStatus
		routeStatus            route.Status
		lat, lng               sql.NullFloat64
		updatedAt              sql.NullTime
	)
	if err = rows.Scan(&position, &stopStatus, &routeStatus, &lat, &lng, &updatedAt, &total, &ahead); err != nil {
		return err
	}

	view.QueuePosition = &position
	view.TotalDeliveries = &total
	view.DeliveriesAhead = &ahead
	if stopStatus == route.DeliveryInTransit {
		view.Status = StatusInTransit
		view.IsCurrentDelivery = true
		if routeStatus == route.Active {
			view.DriverLocation = driverLocation(lat, lng, updatedAt)
		}
	}
	return rows.Err()
}
