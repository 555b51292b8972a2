package queries

import (
	"context"

	"lastmile/internal/core/domain/model/loyalty"
	"lastmile/internal/pkg/errs"

	"gorm.io/gorm"
)

type GetLoyaltySummaryQueryHandler struct {
	db *gorm.DB
}

func NewGetLoyaltySummaryQueryHandler(db *gorm.DB) GetLoyaltySummaryQueryHandler {
	return GetLoyaltySummaryQueryHandler{db: db}
}

func (h GetLoyaltySummaryQueryHandler) Handle(ctx context.Context, query GetLoyaltySummaryQuery) (LoyaltySummary, error) {
	if err := query.Validate(); err != nil {
		return LoyaltySummary{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT name, category, current_points, lifetime_points
		FROM clients
		WHERE id = ?
	`, query.ClientID().Bytes()).Rows()
	if err != nil {
		return LoyaltySummary{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return LoyaltySummary{}, err
		}
		return LoyaltySummary{}, errs.NewObjectNotFoundError("client", query.ClientID().String())
	}

	summary := LoyaltySummary{ClientID: query.ClientID()}
	if err = rows.Scan(&summary.Name, &summary.Category, &summary.CurrentPoints, &summary.LifetimePoints); err != nil {
		return LoyaltySummary{}, err
	}

	summary.Tier = loyalty.TierFor(summary.LifetimePoints).Name
	if missing, ok := loyalty.PointsToNextTier(summary.LifetimePoints); ok {
		summary.PointsToNextTier = missing
		summary.NextTier = loyalty.TierFor(summary.LifetimePoints + missing).Name
	}
	return summary, rows.Err()
}
