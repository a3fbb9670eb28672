package controllers

import (
	"context"
	"net/http"

	"github.com/storehubhq/storehub-backend/api/responses"
	"github.com/storehubhq/storehub-backend/internal/subscriptions"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

// SweepRunner executes one subscription sweep on demand.
type SweepRunner interface {
	Run(ctx context.Context) (*subscriptions.Summary, error)
}

// TriggerSweep runs the subscription sweep synchronously and returns its
// summary. Safe to call repeatedly; conditional writes make a second
// immediate run a no-op.
func TriggerSweep(runner SweepRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		summary, err := runner.Run(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscription sweep failed"))
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
