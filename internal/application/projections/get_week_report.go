package projections

import (
	"arisan/internal/application/state"
	"arisan/internal/domain/ledger"
)

// GetWeekReportDeps holds dependencies for the week report.
type GetWeekReportDeps struct {
	State *state.Container
}

// GetWeekReport builds the per-member picture of a single week.
// PRE: week >= 1
// POST: Result lists every active member with saved/received flags
func GetWeekReport(week int, deps GetWeekReportDeps) ledger.WeekReport {
	return deps.State.Current().WeekReport(week)
}
