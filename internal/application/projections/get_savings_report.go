package projections

import (
	"github.com/shopspring/decimal"

	"arisan/internal/application/state"
	"arisan/internal/domain/ledger"
)

// MemberSavings summarizes one member's ledger position.
type MemberSavings struct {
	MemberID      string
	Name          string
	IsActive      bool
	TotalSaved    decimal.Decimal
	TotalReceived decimal.Decimal
	WeeksSaved    []int
	WeeksReceived []int
}

// SavingsReport is the per-member breakdown plus group totals.
type SavingsReport struct {
	Members       []MemberSavings
	TotalKas      decimal.Decimal
	TotalTabungan decimal.Decimal
}

// GetSavingsReportDeps holds dependencies for the savings report.
type GetSavingsReportDeps struct {
	State *state.Container
}

// GetSavingsReport tallies saving and receiving transactions per member.
// POST: Members appear in roster order; totals derive from transactions,
// not cached counters
func GetSavingsReport(deps GetSavingsReportDeps) SavingsReport {
	st := deps.State.Current()

	byMember := make(map[string]*MemberSavings, len(st.Members))
	report := SavingsReport{
		Members:       make([]MemberSavings, len(st.Members)),
		TotalKas:      st.TotalKas(),
		TotalTabungan: st.TotalTabungan(),
	}
	for i, m := range st.Members {
		report.Members[i] = MemberSavings{
			MemberID:      m.ID,
			Name:          m.Name,
			IsActive:      m.IsActive,
			TotalSaved:    decimal.Zero,
			TotalReceived: decimal.Zero,
			WeeksReceived: m.WeeksReceived,
		}
		byMember[m.ID] = &report.Members[i]
	}

	for _, tx := range st.Transactions {
		entry, ok := byMember[tx.MemberID]
		if !ok {
			continue // orphaned by a member deletion
		}
		switch tx.Type {
		case ledger.TypeSaving:
			entry.TotalSaved = entry.TotalSaved.Add(tx.Amount)
			entry.WeeksSaved = append(entry.WeeksSaved, tx.Week)
		case ledger.TypeReceiving:
			entry.TotalReceived = entry.TotalReceived.Add(tx.Amount)
		}
	}
	return report
}
