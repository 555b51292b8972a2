package queries

import (
	"context"
	"database/sql"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetRouteQueryHandler struct {
	db *gorm.DB
}

func NewGetRouteQueryHandler(db *gorm.DB) GetRouteQueryHandler {
	return GetRouteQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError when no route matches.
func (h GetRouteQueryHandler) Handle(ctx context.Context, query GetRouteQuery) (RouteView, error) {
	if err := query.Validate(); err != nil {
		return RouteView{}, err
	}

	db := h.db.WithContext(ctx)
	view, routeID, err := h.route(db, query)
	if err != nil {
		return RouteView{}, err
	}

	evidence, err := h.evidence(db, routeID)
	if err != nil {
		return RouteView{}, err
	}
	if view.Deliveries, err = h.stops(db, routeID, evidence); err != nil {
		return RouteView{}, err
	}
	return view, nil
}

func (h GetRouteQueryHandler) route(db *gorm.DB, query GetRouteQuery) (RouteView, uuid.UUID, error) {
	where, arg, ref := "r.id = ?", any(query.id.Bytes()), query.id.String()
	if !query.driverToken.IsEmpty() {
		where, arg, ref = "r.driver_token = ?", query.driverToken.String(), query.driverToken.Prefix(8)
	}

	rows, err := db.Raw(`
		SELECT
			r.id,
			r.name,
			r.driver_token,
			r.status,
			r.created_at,
			r.started_at,
			r.completed_at,
			r.current_latitude,
			r.current_longitude,
			r.last_location_update
		FROM delivery_routes r
		WHERE `+where, arg).Rows()
	if err != nil {
		return RouteView{}, uuid.Nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return RouteView{}, uuid.Nil, err
		}
		return RouteView{}, uuid.Nil, errs.NewObjectNotFoundError("route", ref)
	}

	var (
		view      RouteView
		id        uuid.UUID
		token     string
		lat, lng  sql.NullFloat64
		updatedAt sql.NullTime
	)
	if err = rows.Scan(&id, &view.Name, &token, &view.Status, &view.CreatedAt,
		&view.StartedAt, &view.CompletedAt, &lat, &lng, &updatedAt); err != nil {
		return RouteView{}, uuid.Nil, err
	}

	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return RouteView{}, uuid.Nil, err
	}
	view.DriverToken = kernel.Token(token)
	view.Location = driverLocation(lat, lng, updatedAt)
	return view, id, nil
}

// evidence maps each stop to its photo urls in upload order.
func (h GetRouteQueryHandler) evidence(db *gorm.DB, routeID uuid.UUID) (map[uuid.UUID][]string, error) {
	rows, err := db.Raw(`
		SELECT e.delivery_id, e.image_url
		FROM delivery_evidences e
		JOIN deliveries d ON d.id = e.delivery_id
		WHERE d.route_id = ?
		ORDER BY e.created_at, e.id
	`, routeID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	urls := make(map[uuid.UUID][]string)
	for rows.Next() {
		var (
			deliveryID uuid.UUID
			url        string
		)
		if err = rows.Scan(&deliveryID, &url); err != nil {
			return nil, err
		}
		urls[deliveryID] = append(urls[deliveryID], url)
	}
	return urls, rows.Err()
}

func (h GetRouteQueryHandler) stops(
	db *gorm.DB,
	routeID uuid.UUID,
	evidence map[uuid.UUID][]string,
) ([]RouteStopView, error) {
	rows, err := db.Raw(`
		SELECT
			d.id,
			d.order_id,
			d.sort_order,
			d.status,
			c.name,
			c.phone,
			c.address,
			o.total,
			d.delivered_at,
			d.notes,
			d.failure_reason
		FROM deliveries d
		JOIN orders o ON o.id = d.order_id
		JOIN clients c ON c.id = o.client_id
		WHERE d.route_id = ?
		ORDER BY d.sort_order
	`, routeID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stops := make([]RouteStopView, 0)
	for rows.Next() {
		var (
			stop        RouteStopView
			id, orderID uuid.UUID
			total       decimal.Decimal
			deliveredAt *time.Time
			address     sql.NullString
		)
		err = rows.Scan(&id, &orderID, &stop.SortOrder, &stop.Status, &stop.ClientName, &stop.ClientPhone,
			&address, &total, &deliveredAt, &stop.Notes, &stop.FailureReason)
		if err != nil {
			return nil, err
		}

		if stop.DeliveryID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if stop.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		if stop.Total, err = kernel.NewMoney(total); err != nil {
			return nil, err
		}
		stop.ClientAddress = address.String
		stop.DeliveredAt = deliveredAt
		stop.EvidenceURLs = evidence[id]
		if stop.EvidenceURLs == nil {
			stop.EvidenceURLs = []string{}
		}
		stops = append(stops, stop)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return stops, nil
}

func driverLocation(lat, lng sql.NullFloat64, updatedAt sql.NullTime) *DriverLocation {
	if !lat.Valid || !lng.Valid || !updatedAt.Valid {
		return nil
	}
	return &DriverLocation{Latitude: lat.Float64, Longitude: lng.Float64, LastUpdate: updatedAt.Time}
}
