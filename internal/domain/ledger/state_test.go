package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"arisan/internal/domain/member"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func rp(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// fiveMemberState returns a fresh default state (five active members).
func fiveMemberState() State {
	return Default()
}

// saveAll marks every active member as saved for the week.
func saveAll(t *testing.T, s State, week int) State {
	t.Helper()
	for i, m := range member.Active(s.Members) {
		var err error
		s, err = s.MarkSaved(m.ID, week, fmt.Sprintf("tx-s-%d-%d", week, i), testNow)
		if err != nil {
			t.Fatalf("MarkSaved(%s): %v", m.ID, err)
		}
	}
	return s
}

// TestDefault tests the fresh-group construction.
func TestDefault(t *testing.T) {
	s := Default()
	if len(s.Members) != 5 {
		t.Errorf("members = %d, want 5", len(s.Members))
	}
	if s.CurrentWeek != 1 || s.ManualWeek {
		t.Errorf("week pointer = %d (manual=%v), want 1 unpinned", s.CurrentWeek, s.ManualWeek)
	}
	if len(s.Transactions) != 0 || len(s.CompletedWeeks) != 0 {
		t.Error("fresh state should have empty ledgers")
	}
	if !s.DarkMode {
		t.Error("theme should default to dark")
	}
	if s.AdminPassword == "" {
		t.Error("default credential should be set")
	}
}

// TestMarkSavedIdempotent tests that a duplicate save is a silent no-op.
func TestMarkSavedIdempotent(t *testing.T) {
	s := fiveMemberState()
	s, err := s.MarkSaved("1", 1, "tx1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err = s.MarkSaved("1", 1, "tx2", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for _, tx := range s.Transactions {
		if tx.MemberID == "1" && tx.Week == 1 && tx.Type == TypeSaving {
			count++
		}
	}
	if count != 1 {
		t.Errorf("saving transactions = %d, want 1", count)
	}
	if !s.Transactions[0].Amount.Equal(UnitContribution) {
		t.Errorf("amount = %s, want %s", s.Transactions[0].Amount, UnitContribution)
	}
}

// TestMarkSavedUnknownMember tests the member existence check.
func TestMarkSavedUnknownMember(t *testing.T) {
	s := fiveMemberState()
	if _, err := s.MarkSaved("nope", 1, "tx1", testNow); err != ErrMemberNotFound {
		t.Errorf("got %v, want ErrMemberNotFound", err)
	}
}

// TestMarkSavedDoesNotTouchTotalSaved tests the pooled-cash model: funds
// accrue to the pool, not to the member aggregate.
func TestMarkSavedDoesNotTouchTotalSaved(t *testing.T) {
	s := fiveMemberState()
	s, _ = s.MarkSaved("1", 1, "tx1", testNow)
	if !s.Members[0].TotalSaved.Equal(decimal.Zero) {
		t.Errorf("TotalSaved = %s, want 0", s.Members[0].TotalSaved)
	}
}

// TestUnmarkSavedRoundTrip tests unmark followed by re-mark restores one tx.
func TestUnmarkSavedRoundTrip(t *testing.T) {
	s := fiveMemberState()
	s, _ = s.MarkSaved("1", 1, "tx1", testNow)
	s = s.UnmarkSaved("1", 1)
	if s.HasSaved("1", 1) {
		t.Fatal("saving transaction should be gone")
	}
	s, _ = s.MarkSaved("1", 1, "tx2", testNow)
	count := 0
	for _, tx := range s.Transactions {
		if tx.MemberID == "1" && tx.Week == 1 && tx.Type == TypeSaving {
			count++
		}
	}
	if count != 1 {
		t.Errorf("saving transactions = %d, want exactly 1 after round trip", count)
	}
}

// TestMarkReceivedGate tests rejection while any active member hasn't saved.
func TestMarkReceivedGate(t *testing.T) {
	s := fiveMemberState()
	// Only four of five saved.
	for i := 0; i < 4; i++ {
		s, _ = s.MarkSaved(s.Members[i].ID, 1, fmt.Sprintf("tx-%d", i), testNow)
	}
	if _, _, err := s.MarkReceived("1", 1, "rx1", testNow); err != ErrWeekIncomplete {
		t.Errorf("got %v, want ErrWeekIncomplete", err)
	}
	// State unchanged on rejection.
	if len(s.Members[0].WeeksReceived) != 0 {
		t.Error("rejected payout must not mutate state")
	}
}

// TestMarkReceivedScenario walks a full round: 5 members, unit 100000,
// all saved week 1, member[0] receives 400000 and kas drops to 100000.
func TestMarkReceivedScenario(t *testing.T) {
	s := saveAll(t, fiveMemberState(), 1)
	if got := s.TotalKas(); !got.Equal(rp(500000)) {
		t.Fatalf("kas after all saved = %s, want 500000", got)
	}

	s, payout, err := s.MarkReceived("1", 1, "rx1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payout.Equal(rp(400000)) {
		t.Errorf("payout = %s, want 400000", payout)
	}
	if got := s.TotalKas(); !got.Equal(rp(100000)) {
		t.Errorf("kas after payout = %s, want 100000", got)
	}
	if !s.Members[0].HasReceived(1) {
		t.Error("week 1 missing from receiver's WeeksReceived")
	}

	// Exactly one receiving transaction for the (member, week).
	count := 0
	for _, tx := range s.Transactions {
		if tx.MemberID == "1" && tx.Week == 1 && tx.Type == TypeReceiving {
			count++
		}
	}
	if count != 1 {
		t.Errorf("receiving transactions = %d, want 1", count)
	}
}

// TestMarkReceivedTwice tests the once-per-week payout rule.
func TestMarkReceivedTwice(t *testing.T) {
	s := saveAll(t, fiveMemberState(), 1)
	s, _, err := s.MarkReceived("1", 1, "rx1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := s.MarkReceived("1", 1, "rx2", testNow); err != ErrAlreadyReceived {
		t.Errorf("got %v, want ErrAlreadyReceived", err)
	}
}

// TestUnmarkReceived tests that the payout reversal keeps contributions.
func TestUnmarkReceived(t *testing.T) {
	s := saveAll(t, fiveMemberState(), 1)
	s, _, _ = s.MarkReceived("1", 1, "rx1", testNow)
	s = s.UnmarkReceived("1", 1)

	if s.Members[0].HasReceived(1) {
		t.Error("week 1 should be removed from WeeksReceived")
	}
	savings := 0
	for _, tx := range s.Transactions {
		switch tx.Type {
		case TypeSaving:
			savings++
		case TypeReceiving:
			t.Error("receiving transaction should be removed")
		}
	}
	if savings != 5 {
		t.Errorf("saving transactions = %d, want 5 untouched", savings)
	}
	if got := s.TotalKas(); !got.Equal(rp(500000)) {
		t.Errorf("kas = %s, want 500000 restored", got)
	}
}

// TestRotationProperty tests receiver(w) == activeMembers[(w-1) mod n] for many weeks.
func TestRotationProperty(t *testing.T) {
	s := fiveMemberState()
	active := member.Active(s.Members)
	for w := 1; w <= 23; w++ {
		got := s.ReceiverForWeek(w)
		want := active[(w-1)%len(active)]
		if got == nil || got.ID != want.ID {
			t.Fatalf("week %d receiver = %v, want %s", w, got, want.ID)
		}
	}
}

// TestRotationFollowsLiveMembership tests that roster edits reshuffle turns.
func TestRotationFollowsLiveMembership(t *testing.T) {
	s := fiveMemberState()
	s.CurrentWeek = 2
	before := s.CurrentReceiver()
	if before == nil || before.ID != "2" {
		t.Fatalf("week 2 receiver = %v, want member 2", before)
	}
	// Deleting member 1 shifts everyone down: no frozen snapshot of order.
	s = s.DeleteMember("1")
	after := s.CurrentReceiver()
	if after == nil || after.ID != "3" {
		t.Errorf("week 2 receiver after delete = %v, want member 3", after)
	}
}

// TestRotationEmptyRoster tests receiver queries with no active members.
func TestRotationEmptyRoster(t *testing.T) {
	s := State{CurrentWeek: 1}
	if s.CurrentReceiver() != nil || s.NextReceiver() != nil {
		t.Error("empty roster should have no receiver")
	}
}

// TestTotalKasSkipsCompletedWeeks tests that settled weeks contribute zero.
func TestTotalKasSkipsCompletedWeeks(t *testing.T) {
	s := saveAll(t, fiveMemberState(), 1)
	s = saveAll(t, s, 2)
	if got := s.TotalKas(); !got.Equal(rp(1000000)) {
		t.Fatalf("kas = %s, want 1000000", got)
	}
	s = s.CompleteWeek(1)
	if got := s.TotalKas(); !got.Equal(rp(500000)) {
		t.Errorf("kas = %s, want 500000 (week 1 settled)", got)
	}
	s = s.UncompleteWeek(1)
	if got := s.TotalKas(); !got.Equal(rp(1000000)) {
		t.Errorf("kas = %s, want 1000000 after uncomplete", got)
	}
}

// TestTotalKasNeverNegative tests the zero floor.
func TestTotalKasNeverNegative(t *testing.T) {
	s := fiveMemberState()
	// Legacy data could contain a receiving without matching savings.
	s.Transactions = []Transaction{{
		ID: "rx", Type: TypeReceiving, MemberID: "1", MemberName: "Anggota A",
		Amount: rp(400000), Week: 1, Date: testNow, Status: StatusCompleted,
	}}
	if got := s.TotalKas(); !got.Equal(decimal.Zero) {
		t.Errorf("kas = %s, want 0 floor", got)
	}
}

// TestCompleteWeekAdvancesPointer tests auto-advance past completed weeks.
func TestCompleteWeekAdvancesPointer(t *testing.T) {
	s := fiveMemberState()
	s.CurrentWeek = 1
	s = s.CompleteWeek(1)
	if s.CurrentWeek != 2 {
		t.Errorf("CurrentWeek = %d, want 2", s.CurrentWeek)
	}
	// Completing a non-current week leaves the pointer alone.
	s = s.CompleteWeek(5)
	if s.CurrentWeek != 2 {
		t.Errorf("CurrentWeek = %d, want 2", s.CurrentWeek)
	}
	// Completing week 2 skips over already-completed weeks (none here, so 3).
	s = s.CompleteWeek(2)
	if s.CurrentWeek != 3 {
		t.Errorf("CurrentWeek = %d, want 3", s.CurrentWeek)
	}
	// Completed set stays sorted and deduplicated.
	s = s.CompleteWeek(2)
	want := []int{1, 2, 5}
	if len(s.CompletedWeeks) != len(want) {
		t.Fatalf("CompletedWeeks = %v, want %v", s.CompletedWeeks, want)
	}
	for i, w := range want {
		if s.CompletedWeeks[i] != w {
			t.Fatalf("CompletedWeeks = %v, want %v", s.CompletedWeeks, want)
		}
	}
}

// TestCompleteWeekAdvanceSkipsCompleted tests a gap-free jump.
func TestCompleteWeekAdvanceSkipsCompleted(t *testing.T) {
	s := fiveMemberState()
	s.CurrentWeek = 1
	s.CompletedWeeks = []int{2, 3}
	s = s.CompleteWeek(1)
	if s.CurrentWeek != 4 {
		t.Errorf("CurrentWeek = %d, want 4 (2 and 3 already settled)", s.CurrentWeek)
	}
}

// TestCompleteWeekRespectsPin tests that a pinned pointer is not advanced.
func TestCompleteWeekRespectsPin(t *testing.T) {
	s := fiveMemberState()
	s = s.SetCurrentWeek(1)
	s = s.CompleteWeek(1)
	if s.CurrentWeek != 1 {
		t.Errorf("CurrentWeek = %d, want pinned 1", s.CurrentWeek)
	}
	if !s.IsWeekCompleted(1) {
		t.Error("week 1 should still be completed")
	}
}

// TestSetCurrentWeekPins tests the manual pin flag.
func TestSetCurrentWeekPins(t *testing.T) {
	s := fiveMemberState()
	s = s.SetCurrentWeek(7)
	if s.CurrentWeek != 7 || !s.ManualWeek {
		t.Errorf("got week %d (manual=%v), want 7 pinned", s.CurrentWeek, s.ManualWeek)
	}
}

// TestClearWeekPin tests recompute from clock after unpinning.
func TestClearWeekPin(t *testing.T) {
	s := fiveMemberState()
	s.Schedule.StartDate = testNow
	s = s.SetCurrentWeek(7)
	s = s.ClearWeekPin(testNow.AddDate(0, 0, 14))
	if s.ManualWeek {
		t.Error("pin should be cleared")
	}
	if s.CurrentWeek != 3 {
		t.Errorf("CurrentWeek = %d, want 3 from clock", s.CurrentWeek)
	}
}

// TestAddUpdateDeleteMember tests basic roster edits.
func TestAddUpdateDeleteMember(t *testing.T) {
	s := fiveMemberState()
	s = s.AddMember(member.New("m6", "Fina", "fina@example.com", ""))
	if len(s.Members) != 6 {
		t.Fatalf("members = %d, want 6", len(s.Members))
	}

	name := "Fina Baru"
	inactive := false
	s, err := s.UpdateMember("m6", MemberUpdate{Name: &name, IsActive: &inactive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Members[5].Name != "Fina Baru" || s.Members[5].IsActive {
		t.Errorf("update not applied: %+v", s.Members[5])
	}
	if s.Members[5].Email != "fina@example.com" {
		t.Errorf("nil fields must be left unchanged, email = %q", s.Members[5].Email)
	}

	if _, err := s.UpdateMember("ghost", MemberUpdate{}); err != ErrMemberNotFound {
		t.Errorf("got %v, want ErrMemberNotFound", err)
	}

	s, _ = s.MarkSaved("m6", 1, "tx-m6", testNow)
	s = s.DeleteMember("m6")
	if len(s.Members) != 5 {
		t.Errorf("members = %d, want 5", len(s.Members))
	}
	// History is preserved, orphaned.
	found := false
	for _, tx := range s.Transactions {
		if tx.MemberID == "m6" {
			found = true
		}
	}
	if !found {
		t.Error("deleting a member must not remove their transactions")
	}
}

// TestReset tests which fields a reset preserves.
func TestReset(t *testing.T) {
	s := saveAll(t, fiveMemberState(), 1)
	s, _, _ = s.MarkReceived("1", 1, "rx1", testNow)
	s = s.CompleteWeek(1)
	s = s.SetCurrentWeek(9)
	s.AdminEmail = "admin@example.com"
	s.AdminPassword = "masked"
	s.DarkMode = false
	s.IsAdmin = true
	s.Schedule.StartDate = testNow
	s = s.AddGalleryItem(galleryFixture())

	s = s.Reset()

	if len(s.Transactions) != 0 || len(s.CompletedWeeks) != 0 {
		t.Error("reset should clear the ledger")
	}
	if s.CurrentWeek != 1 || s.ManualWeek {
		t.Errorf("reset pointer = %d (manual=%v), want 1 unpinned", s.CurrentWeek, s.ManualWeek)
	}
	if len(s.Members) != 5 || s.Members[0].Name != "Anggota A" {
		t.Error("reset should restore the default roster")
	}
	if len(s.Gallery) != 1 {
		t.Error("reset must preserve the gallery")
	}
	if s.AdminEmail != "admin@example.com" || s.AdminPassword != "masked" {
		t.Error("reset must preserve admin settings")
	}
	if s.DarkMode || !s.IsAdmin {
		t.Error("reset must preserve theme and session flag")
	}
	if !s.Schedule.StartDate.Equal(testNow) {
		t.Error("reset must preserve the schedule")
	}
}

// TestStateValueSemantics tests that mutations do not leak into the old state.
func TestStateValueSemantics(t *testing.T) {
	s1 := fiveMemberState()
	s2, _ := s1.MarkSaved("1", 1, "tx1", testNow)
	if len(s1.Transactions) != 0 {
		t.Error("old state gained a transaction")
	}
	s3, _, err := saveAllQuiet(s2).MarkReceived("1", 1, "rx1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s2.Members[0].HasReceived(1) {
		t.Error("old state gained a received week")
	}
	if !s3.Members[0].HasReceived(1) {
		t.Error("new state missing received week")
	}
}

func saveAllQuiet(s State) State {
	for i, m := range member.Active(s.Members) {
		s, _ = s.MarkSaved(m.ID, 1, fmt.Sprintf("q-%d", i), testNow)
	}
	return s
}
