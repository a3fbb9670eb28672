package controllers

import (
	"context"
	"net/http"

	"github.com/storehubhq/storehub-backend/api/responses"
	"github.com/storehubhq/storehub-backend/pkg/db/models"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

// PlanService is the catalog surface the plan controllers call.
type PlanService interface {
	List(ctx context.Context) ([]models.Plan, error)
}

type planResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DurationMonths int    `json:"durationMonths"`
	TrialDays      int    `json:"trialDays"`
	Price          string `json:"price"`
	CurrencyCode   string `json:"currencyCode"`
}

// ListPlans returns every plan open for subscription.
func ListPlans(svc PlanService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		plans, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]planResponse, 0, len(plans))
		for _, plan := range plans {
			out = append(out, planResponse{
				ID:             plan.ID.String(),
				Name:           plan.Name,
				DurationMonths: plan.DurationMonths,
				TrialDays:      plan.TrialDays,
				Price:          plan.Price.StringFixed(2),
				CurrencyCode:   plan.CurrencyCode,
			})
		}
		responses.WriteSuccess(w, map[string]any{"plans": out})
	}
}
