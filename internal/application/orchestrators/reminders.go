package orchestrators

import (
	"context"
	"log/slog"

	"arisan/internal/adapters/email"
	"arisan/internal/application/state"
)

// SendRemindersDeps holds dependencies for ExecuteSendReminders.
type SendRemindersDeps struct {
	State  *state.Container
	Sender email.Sender
}

// SendRemindersResult carries the outcome of a reminder blast.
type SendRemindersResult struct {
	Sent    int
	Skipped int // active members without an email address
}

// ExecuteSendReminders emails every active member who has not yet saved
// for the current week.
// PRE: caller is an authenticated admin
// POST: One reminder queued per unpaid active member with an address
func ExecuteSendReminders(ctx context.Context, deps SendRemindersDeps) (SendRemindersResult, error) {
	st := deps.State.Current()
	week := st.CurrentWeek

	var reqs []email.SendRequest
	var skipped int
	for _, m := range st.Members {
		if !m.IsActive || st.HasSaved(m.ID, week) {
			continue
		}
		if m.Email == "" {
			skipped++
			continue
		}
		req, err := email.Reminder{To: m.Email, MemberName: m.Name, Week: week}.Compose()
		if err != nil {
			return SendRemindersResult{}, err
		}
		reqs = append(reqs, req)
	}

	if len(reqs) == 0 {
		slog.Info("reminders_skipped", "week", week, "skipped", skipped)
		return SendRemindersResult{Skipped: skipped}, nil
	}

	results, err := deps.Sender.SendBatch(ctx, reqs)
	if err != nil {
		return SendRemindersResult{Sent: len(results), Skipped: skipped}, err
	}

	slog.Info("reminders_sent", "week", week, "count", len(results), "skipped", skipped)
	return SendRemindersResult{Sent: len(results), Skipped: skipped}, nil
}
