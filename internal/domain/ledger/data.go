package ledger

import (
	"time"

	"arisan/internal/domain/gallery"
	"arisan/internal/domain/member"
	"arisan/internal/domain/schedule"
)

// Data is the full snapshot exchanged with the remote document store.
// The admin credential, theme and session flag stay local.
type Data struct {
	Members         []member.Member          `json:"members"`
	Transactions    []Transaction            `json:"transactions"`
	Gallery         []gallery.Item           `json:"gallery"`
	CurrentWeek     int                      `json:"currentWeek"`
	CompletedWeeks  []int                    `json:"completedWeeks"`
	SavingsSchedule schedule.SavingsSchedule `json:"savingsSchedule"`
	AdminEmail      string                   `json:"adminEmail"`
	ManualWeek      bool                     `json:"isCurrentWeekManual"`
	LastUpdated     time.Time                `json:"lastUpdated,omitzero"`
}

// DefaultData returns the snapshot a remote pull falls back to when the
// store is unconfigured or the document is absent. Decoding a response
// into this value leaves absent fields at these defaults, so nothing is
// ever left unset.
func DefaultData() Data {
	return Data{
		Members:         member.DefaultRoster(),
		Transactions:    []Transaction{},
		Gallery:         []gallery.Item{},
		CurrentWeek:     1,
		CompletedWeeks:  []int{},
		SavingsSchedule: schedule.Default(),
		AdminEmail:      DefaultAdminEmail,
	}
}

// Data extracts the remote-sync subset of the state.
// PRE: none
// POST: Returned value shares no invariant-bearing slices with s' future
// mutations (State ops copy on write)
func (s State) Data(now time.Time) Data {
	return Data{
		Members:         s.Members,
		Transactions:    s.Transactions,
		Gallery:         s.Gallery,
		CurrentWeek:     s.CurrentWeek,
		CompletedWeeks:  s.CompletedWeeks,
		SavingsSchedule: s.Schedule,
		AdminEmail:      s.AdminEmail,
		ManualWeek:      s.ManualWeek,
		LastUpdated:     now,
	}
}

// Merge overlays a pulled snapshot onto the local state. Every field the
// remote carries replaces the local one; the credential, theme and
// session flag are local-only and survive. When the week pointer is not
// pinned it is recomputed from the pulled schedule and the wall clock
// instead of trusting the remote value verbatim. Last write wins; there
// is no conflict resolution.
// PRE: d was resolved against DefaultData so no field is unset
// POST: Returns the merged State
func (s State) Merge(d Data, now time.Time) State {
	s.Members = ensureMembers(d.Members)
	s.Transactions = ensureTransactions(d.Transactions)
	s.Gallery = ensureGallery(d.Gallery)
	s.CompletedWeeks = ensureInts(d.CompletedWeeks)
	s.Schedule = d.SavingsSchedule
	s.AdminEmail = d.AdminEmail
	s.ManualWeek = d.ManualWeek
	if s.ManualWeek {
		s.CurrentWeek = d.CurrentWeek
	} else {
		s.CurrentWeek = s.Schedule.CurrentWeek(now)
	}
	if s.AdminEmail == "" {
		s.AdminEmail = DefaultAdminEmail
	}
	if s.CurrentWeek < 1 {
		s.CurrentWeek = 1
	}
	return s
}

func ensureMembers(in []member.Member) []member.Member {
	if in == nil {
		return []member.Member{}
	}
	return in
}

func ensureTransactions(in []Transaction) []Transaction {
	if in == nil {
		return []Transaction{}
	}
	return in
}

func ensureGallery(in []gallery.Item) []gallery.Item {
	if in == nil {
		return []gallery.Item{}
	}
	return in
}

func ensureInts(in []int) []int {
	if in == nil {
		return []int{}
	}
	return in
}
