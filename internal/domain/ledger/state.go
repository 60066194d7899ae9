// Package ledger is the arisan bookkeeping core: the application state
// aggregate, its mutation operations, and the rotation/pool queries.
//
// Operations are value-receiver methods returning a new State; callers
// own publication of the result. Slices are copied before modification
// so an old State stays usable after a mutation.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"arisan/internal/domain/gallery"
	"arisan/internal/domain/member"
	"arisan/internal/domain/schedule"
	"arisan/internal/security"
)

// DefaultAdminEmail receives the payout notifications until the admin
// configures a real address.
const DefaultAdminEmail = "bendahara@example.com"

// State is the root aggregate: roster, ledger, gallery, rotation pointer
// and the admin settings.
// INVARIANT: CompletedWeeks is sorted ascending with no duplicates.
// INVARIANT: at most one saving transaction per (member, week); at most
// one receiving transaction per (member, week).
type State struct {
	Members        []member.Member
	Transactions   []Transaction
	Gallery        []gallery.Item
	CurrentWeek    int
	CompletedWeeks []int
	Schedule       schedule.SavingsSchedule
	AdminEmail     string
	AdminPassword  string // obfuscated, see internal/security
	IsAdmin        bool   // session flag; never persisted as true
	DarkMode       bool
	ManualWeek     bool // admin pinned CurrentWeek; clock recompute suspended
}

// Default returns a fresh group: five placeholder members, empty ledgers,
// week 1, Monday 09:00 schedule, the default obfuscated credential and
// dark mode on.
func Default() State {
	return State{
		Members:        member.DefaultRoster(),
		Transactions:   []Transaction{},
		Gallery:        []gallery.Item{},
		CurrentWeek:    1,
		CompletedWeeks: []int{},
		Schedule:       schedule.Default(),
		AdminEmail:     DefaultAdminEmail,
		AdminPassword:  security.DefaultObfuscated(),
		DarkMode:       true,
	}
}

// --- roster operations ---

// AddMember appends a new roster entry.
// PRE: m was built with member.New and validated by the caller
// POST: Returns a State with the member appended; rotation order shifts
// accordingly
func (s State) AddMember(m member.Member) State {
	s.Members = append(cloneMembers(s.Members), m)
	return s
}

// MemberUpdate carries partial roster edits; nil fields are left unchanged.
type MemberUpdate struct {
	Name     *string
	Email    *string
	Phone    *string
	IsActive *bool
}

// UpdateMember applies a partial edit to one member.
// PRE: id is non-empty
// POST: Returns the updated State, or ErrMemberNotFound
func (s State) UpdateMember(id string, u MemberUpdate) (State, error) {
	members := cloneMembers(s.Members)
	for i := range members {
		if members[i].ID != id {
			continue
		}
		if u.Name != nil {
			members[i].Name = *u.Name
		}
		if u.Email != nil {
			members[i].Email = *u.Email
		}
		if u.Phone != nil {
			members[i].Phone = *u.Phone
		}
		if u.IsActive != nil {
			members[i].IsActive = *u.IsActive
		}
		s.Members = members
		return s, nil
	}
	return s, ErrMemberNotFound
}

// DeleteMember removes a member from the roster. Their transactions are
// kept (orphaned) so ledger history is preserved.
// PRE: id is non-empty
// POST: Returns a State without the member; unknown ids are a no-op
func (s State) DeleteMember(id string) State {
	out := make([]member.Member, 0, len(s.Members))
	for _, m := range s.Members {
		if m.ID != id {
			out = append(out, m)
		}
	}
	s.Members = out
	return s
}

func (s State) findMember(id string) (member.Member, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return member.Member{}, false
}

// --- week cell operations ---

// HasSaved returns true if the member already has a saving transaction
// for the week.
func (s State) HasSaved(memberID string, week int) bool {
	for _, t := range s.Transactions {
		if t.MemberID == memberID && t.Week == week && t.Type == TypeSaving {
			return true
		}
	}
	return false
}

// AllActiveSaved returns true if every active member has a saving
// transaction for the week. False for an empty roster.
func (s State) AllActiveSaved(week int) bool {
	active := member.Active(s.Members)
	if len(active) == 0 {
		return false
	}
	for _, m := range active {
		if !s.HasSaved(m.ID, week) {
			return false
		}
	}
	return true
}

// MarkSaved records a member's unit contribution for a week. The money
// accrues to the shared pool; TotalSaved is not touched.
// PRE: txID is a fresh unique id
// POST: Exactly one saving transaction exists for (member, week); a
// duplicate call is a silent no-op
func (s State) MarkSaved(memberID string, week int, txID string, now time.Time) (State, error) {
	m, ok := s.findMember(memberID)
	if !ok {
		return s, ErrMemberNotFound
	}
	if s.HasSaved(memberID, week) {
		return s, nil
	}
	s.Transactions = append(cloneTransactions(s.Transactions), Transaction{
		ID:         txID,
		Type:       TypeSaving,
		MemberID:   memberID,
		MemberName: m.Name,
		Amount:     UnitContribution,
		Week:       week,
		Date:       now,
		Status:     StatusCompleted,
	})
	return s, nil
}

// UnmarkSaved removes a member's saving transaction for a week (admin
// correction path). TotalSaved is not affected.
// PRE: none
// POST: No saving transaction exists for (member, week)
func (s State) UnmarkSaved(memberID string, week int) State {
	s.Transactions = dropTransaction(s.Transactions, memberID, week, TypeSaving)
	return s
}

// MarkReceived pays out the pooled week to one member. The payout nets
// out the receiver's own contribution: pool − unit.
// PRE: txID is a fresh unique id
// POST: A receiving transaction exists for (member, week) and the week is
// in the member's WeeksReceived
// INVARIANT: rejected unless every active member saved for the week
func (s State) MarkReceived(memberID string, week int, txID string, now time.Time) (State, decimal.Decimal, error) {
	m, ok := s.findMember(memberID)
	if !ok {
		return s, decimal.Zero, ErrMemberNotFound
	}
	if m.HasReceived(week) {
		return s, decimal.Zero, ErrAlreadyReceived
	}
	if !s.AllActiveSaved(week) {
		return s, decimal.Zero, ErrWeekIncomplete
	}

	pool := s.PoolTotal()
	payout := pool.Sub(UnitContribution)

	members := cloneMembers(s.Members)
	for i := range members {
		if members[i].ID == memberID {
			members[i].WeeksReceived = append(append([]int{}, members[i].WeeksReceived...), week)
		}
	}
	s.Members = members
	s.Transactions = append(cloneTransactions(s.Transactions), Transaction{
		ID:         txID,
		Type:       TypeReceiving,
		MemberID:   memberID,
		MemberName: m.Name,
		Amount:     payout,
		Week:       week,
		Date:       now,
		Status:     StatusCompleted,
	})
	return s, payout, nil
}

// UnmarkReceived reverses a payout: the receiving transaction and the
// member's received-week marker are removed. Saving transactions are
// untouched.
// PRE: none
// POST: The (member, week) cell is back in the SAVED state
func (s State) UnmarkReceived(memberID string, week int) State {
	members := cloneMembers(s.Members)
	for i := range members {
		if members[i].ID != memberID {
			continue
		}
		kept := make([]int, 0, len(members[i].WeeksReceived))
		for _, w := range members[i].WeeksReceived {
			if w != week {
				kept = append(kept, w)
			}
		}
		members[i].WeeksReceived = kept
	}
	s.Members = members
	s.Transactions = dropTransaction(s.Transactions, memberID, week, TypeReceiving)
	return s
}

// --- week completion ---

// IsWeekCompleted returns true if the admin confirmed the week finished.
func (s State) IsWeekCompleted(week int) bool {
	for _, w := range s.CompletedWeeks {
		if w == week {
			return true
		}
	}
	return false
}

// CompleteWeek marks a week as settled; its running cash balance is
// frozen at zero from then on. Completing the current week advances the
// rotation pointer past every completed week, unless it is pinned.
// PRE: week >= 1
// POST: week is in CompletedWeeks (sorted, deduplicated)
func (s State) CompleteWeek(week int) State {
	if !s.IsWeekCompleted(week) {
		weeks := append(append([]int{}, s.CompletedWeeks...), week)
		sort.Ints(weeks)
		s.CompletedWeeks = weeks
	}
	if week == s.CurrentWeek && !s.ManualWeek {
		next := s.CurrentWeek + 1
		for s.IsWeekCompleted(next) {
			next++
		}
		s.CurrentWeek = next
	}
	return s
}

// UncompleteWeek removes a week from the completed set.
// PRE: none
// POST: week is not in CompletedWeeks; CurrentWeek is left alone
func (s State) UncompleteWeek(week int) State {
	kept := make([]int, 0, len(s.CompletedWeeks))
	for _, w := range s.CompletedWeeks {
		if w != week {
			kept = append(kept, w)
		}
	}
	s.CompletedWeeks = kept
	return s
}

// SetCurrentWeek pins the rotation pointer to an admin-chosen week.
// PRE: week >= 1
// POST: CurrentWeek is pinned; clock recompute and auto-advance stop
func (s State) SetCurrentWeek(week int) State {
	s.CurrentWeek = week
	s.ManualWeek = true
	return s
}

// ClearWeekPin releases the pin and recomputes the week from the clock.
// PRE: now is a valid time
// POST: ManualWeek is false and CurrentWeek follows the schedule
func (s State) ClearWeekPin(now time.Time) State {
	s.ManualWeek = false
	s.CurrentWeek = s.Schedule.CurrentWeek(now)
	return s
}

// SetSchedule changes the weekly slot, snapping the start date forward so
// week alignment is preserved, and recomputes CurrentWeek when not pinned.
// PRE: dayOfWeek is 0-6, clock is HH:mm
// POST: Schedule slot updated with a matching StartDate
func (s State) SetSchedule(dayOfWeek int, clock string, now time.Time) State {
	s.Schedule = s.Schedule.Snap(dayOfWeek, clock, now)
	if !s.ManualWeek {
		s.CurrentWeek = s.Schedule.CurrentWeek(now)
	}
	return s
}

// --- rotation queries ---

// ReceiverForWeek returns the rotation receiver for a given week:
// activeMembers[(week-1) mod n] in live insertion order.
// PRE: week >= 1
// POST: Returns nil when no members are active
func (s State) ReceiverForWeek(week int) *member.Member {
	active := member.Active(s.Members)
	if len(active) == 0 {
		return nil
	}
	m := active[(week-1)%len(active)]
	return &m
}

// CurrentReceiver returns this week's receiver.
func (s State) CurrentReceiver() *member.Member {
	return s.ReceiverForWeek(s.CurrentWeek)
}

// NextReceiver returns next week's receiver.
func (s State) NextReceiver() *member.Member {
	return s.ReceiverForWeek(s.CurrentWeek + 1)
}

// --- pool queries ---

// PoolTotal returns the full weekly pool: active member count × unit.
func (s State) PoolTotal() decimal.Decimal {
	n := int64(len(member.Active(s.Members)))
	return UnitContribution.Mul(decimal.NewFromInt(n))
}

// TotalKas returns the running cash balance: for every week not yet
// completed, that week's savings minus its payouts. Completed weeks are
// settled and contribute zero. Never negative.
func (s State) TotalKas() decimal.Decimal {
	perWeek := map[int]decimal.Decimal{}
	for _, t := range s.Transactions {
		if s.IsWeekCompleted(t.Week) {
			continue
		}
		switch t.Type {
		case TypeSaving:
			perWeek[t.Week] = perWeek[t.Week].Add(t.Amount)
		case TypeReceiving:
			perWeek[t.Week] = perWeek[t.Week].Sub(t.Amount)
		}
	}
	total := decimal.Zero
	for _, net := range perWeek {
		total = total.Add(net)
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// TotalTabungan returns the sum of the members' TotalSaved display
// aggregates. Zero unless legacy data populated the field.
func (s State) TotalTabungan() decimal.Decimal {
	total := decimal.Zero
	for _, m := range s.Members {
		total = total.Add(m.TotalSaved)
	}
	return total
}

// --- gallery ---

// AddGalleryItem appends a gallery photo.
// PRE: item has been validated
// POST: Returns a State with the item appended
func (s State) AddGalleryItem(item gallery.Item) State {
	s.Gallery = append(append([]gallery.Item{}, s.Gallery...), item)
	return s
}

// DeleteGalleryItem removes a gallery photo by id.
func (s State) DeleteGalleryItem(id string) State {
	out := make([]gallery.Item, 0, len(s.Gallery))
	for _, item := range s.Gallery {
		if item.ID != id {
			out = append(out, item)
		}
	}
	s.Gallery = out
	return s
}

// --- lifecycle ---

// Reset replaces the roster with the default five members and clears the
// ledger and rotation bookkeeping. Gallery, schedule, admin email,
// credential, theme and the session flag are preserved.
// PRE: none
// POST: Fresh ledger; preserved fields carry over unchanged
func (s State) Reset() State {
	fresh := Default()
	fresh.Gallery = s.Gallery
	fresh.Schedule = s.Schedule
	fresh.AdminEmail = s.AdminEmail
	fresh.AdminPassword = s.AdminPassword
	fresh.DarkMode = s.DarkMode
	fresh.IsAdmin = s.IsAdmin
	return fresh
}

// --- copy helpers ---

func cloneMembers(in []member.Member) []member.Member {
	out := make([]member.Member, len(in))
	copy(out, in)
	return out
}

func cloneTransactions(in []Transaction) []Transaction {
	out := make([]Transaction, len(in))
	copy(out, in)
	return out
}

func dropTransaction(in []Transaction, memberID string, week int, txType string) []Transaction {
	out := make([]Transaction, 0, len(in))
	for _, t := range in {
		if t.MemberID == memberID && t.Week == week && t.Type == txType {
			continue
		}
		out = append(out, t)
	}
	return out
}
