package queries

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListRoutesQueryHandler struct {
	db *gorm.DB
}

func NewListRoutesQueryHandler(db *gorm.DB) ListRoutesQueryHandler {
	return ListRoutesQueryHandler{db: db}
}

func (h ListRoutesQueryHandler) Handle(ctx context.Context, query ListRoutesQuery) ([]RouteSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	statuses := []route.Status{route.Pending, route.Active, route.Completed, route.Canceled}
	if query.OpenOnly() {
		statuses = []route.Status{route.Pending, route.Active}
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			r.id,
			r.name,
			r.driver_token,
			r.status,
			r.created_at,
			r.started_at,
			r.completed_at,
			COUNT(d.id),
			COUNT(d.id) FILTER (WHERE d.status = ?),
			COUNT(d.id) FILTER (WHERE d.status = ?)
		FROM delivery_routes r
		LEFT JOIN deliveries d ON d.route_id = r.id
		WHERE r.status IN ?
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id
	`, route.DeliveryDelivered, route.DeliveryNotDelivered, statuses).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := make([]RouteSummary, 0)
	for rows.Next() {
		var (
			summary     RouteSummary
			id          uuid.UUID
			token       string
			startedAt   *time.Time
			completedAt *time.Time
		)
		err = rows.Scan(
			&id,
			&summary.Name,
			&token,
			&summary.Status,
			&summary.CreatedAt,
			&startedAt,
			&completedAt,
			&summary.TotalDeliveries,
			&summary.Delivered,
			&summary.Failed,
		)
		if err != nil {
			return nil, err
		}

		if summary.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		summary.DriverToken = kernel.Token(token)
		summary.StartedAt = startedAt
		summary.CompletedAt = completedAt
		routes = append(routes, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return routes, nil
}
