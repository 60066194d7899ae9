// Package projections builds read models from the live state. No
// projection mutates anything.
package projections

import (
	"time"

	"github.com/shopspring/decimal"

	"arisan/internal/application/state"
	"arisan/internal/domain/gallery"
	"arisan/internal/domain/schedule"
)

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	State *state.Container
	Now   func() time.Time
}

// DashboardReceiver is the rotation slot summary shown on the dashboard.
type DashboardReceiver struct {
	MemberID string
	Name     string
	Received bool
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	CurrentWeek     int
	ManualWeek      bool
	CompletedWeeks  []int
	TotalKas        decimal.Decimal
	TotalTabungan   decimal.Decimal
	PoolTotal       decimal.Decimal
	MemberCount     int
	ActiveCount     int
	CurrentReceiver *DashboardReceiver
	NextReceiver    *DashboardReceiver
	NextSavingDate  time.Time
	Schedule        schedule.SavingsSchedule
	Gallery         []gallery.Item
	DarkMode        bool
}

// GetDashboard assembles the landing-page summary.
// PRE: deps are populated
// POST: Result reflects the state at call time
func GetDashboard(deps GetDashboardDeps) DashboardResult {
	st := deps.State.Current()

	result := DashboardResult{
		CurrentWeek:    st.CurrentWeek,
		ManualWeek:     st.ManualWeek,
		CompletedWeeks: st.CompletedWeeks,
		TotalKas:       st.TotalKas(),
		TotalTabungan:  st.TotalTabungan(),
		PoolTotal:      st.PoolTotal(),
		MemberCount:    len(st.Members),
		NextSavingDate: st.Schedule.StartOrNext(deps.Now()),
		Schedule:       st.Schedule,
		Gallery:        st.Gallery,
		DarkMode:       st.DarkMode,
	}
	for _, m := range st.Members {
		if m.IsActive {
			result.ActiveCount++
		}
	}

	if r := st.CurrentReceiver(); r != nil {
		result.CurrentReceiver = &DashboardReceiver{
			MemberID: r.ID,
			Name:     r.Name,
			Received: r.HasReceived(st.CurrentWeek),
		}
	}
	if r := st.NextReceiver(); r != nil {
		result.NextReceiver = &DashboardReceiver{
			MemberID: r.ID,
			Name:     r.Name,
		}
	}
	return result
}
