package plans

import (
	"time"

	"github.com/storehubhq/storehub-backend/pkg/db/models"
)

// ExpireDate computes when a subscription starting at start runs out under
// the given plan. A trial wins over the paid term: trial days are counted
// from the start instead of the month duration. Calendar months follow
// time.AddDate semantics, so Jan 31 plus one month lands on Mar 2 or Mar 3.
func ExpireDate(plan models.Plan, start time.Time) time.Time {
	if plan.TrialDays > 0 {
		return start.AddDate(0, 0, plan.TrialDays)
	}
	return start.AddDate(0, plan.DurationMonths, 0)
}
