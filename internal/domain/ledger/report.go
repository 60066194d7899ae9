package ledger

import (
	"github.com/shopspring/decimal"

	"arisan/internal/domain/member"
)

// MemberWeekEntry is one member's row in a week report.
type MemberWeekEntry struct {
	MemberID   string
	MemberName string
	Saved      decimal.Decimal
	Received   decimal.Decimal
}

// WeekReport summarizes one week's bookkeeping for the completion view.
type WeekReport struct {
	Week          int
	Entries       []MemberWeekEntry
	TotalSaved    decimal.Decimal
	TotalReceived decimal.Decimal
	AllSaved      bool // every active member contributed
	HasReceiver   bool // someone was paid out
	Completed     bool
}

// WeekReport builds the per-member saving/receiving summary for a week,
// over the active roster in rotation order.
// PRE: week >= 1
// POST: Entries has one row per active member
func (s State) WeekReport(week int) WeekReport {
	report := WeekReport{
		Week:          week,
		TotalSaved:    decimal.Zero,
		TotalReceived: decimal.Zero,
		Completed:     s.IsWeekCompleted(week),
	}

	active := member.Active(s.Members)
	report.Entries = make([]MemberWeekEntry, len(active))
	byMember := map[string]*MemberWeekEntry{}
	for i, m := range active {
		report.Entries[i] = MemberWeekEntry{MemberID: m.ID, MemberName: m.Name, Saved: decimal.Zero, Received: decimal.Zero}
		byMember[m.ID] = &report.Entries[i]
	}

	for _, t := range s.Transactions {
		if t.Week != week {
			continue
		}
		switch t.Type {
		case TypeSaving:
			report.TotalSaved = report.TotalSaved.Add(t.Amount)
			if e, ok := byMember[t.MemberID]; ok {
				e.Saved = e.Saved.Add(t.Amount)
			}
		case TypeReceiving:
			report.TotalReceived = report.TotalReceived.Add(t.Amount)
			report.HasReceiver = true
			if e, ok := byMember[t.MemberID]; ok {
				e.Received = e.Received.Add(t.Amount)
			}
		}
	}

	report.AllSaved = s.AllActiveSaved(week)
	return report
}
