package web

import (
	"net/http"

	"arisan/internal/adapters/remote"
	"arisan/internal/application/orchestrators"
	"arisan/internal/application/projections"
)

func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": true})
}

func handleSetAdminEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := orchestrators.ExecuteSetAdminEmail(r.Context(), orchestrators.SetAdminEmailInput{Email: body.Email}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"adminEmail": st.AdminEmail})
}

func handleSetDarkMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DarkMode bool `json:"darkMode"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := orchestrators.ExecuteSetDarkMode(r.Context(), orchestrators.SetDarkModeInput{DarkMode: body.DarkMode}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"darkMode": st.DarkMode})
}

// handleReset restores the default group. The rotated admin credential
// survives so the admin is not locked out.
func handleReset(w http.ResponseWriter, r *http.Request) {
	st, err := orchestrators.ExecuteReset(r.Context(), deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeSuccess(w, st.Data(deps.Now()))
}

func handleSendReminders(w http.ResponseWriter, r *http.Request) {
	result, err := orchestrators.ExecuteSendReminders(r.Context(), orchestrators.SendRemindersDeps{
		State:  deps.State,
		Sender: deps.Sender,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"sent":    result.Sent,
		"skipped": result.Skipped,
	})
}

func handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := projections.GetSyncStatus(r.Context(), projections.GetSyncStatusDeps{
		OutboxStore: deps.Outbox,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func handlePull(w http.ResponseWriter, r *http.Request) {
	// A noop pull would merge the default snapshot over the live ledger.
	if _, ok := deps.Remote.(remote.NoopClient); ok {
		writeError(w, http.StatusServiceUnavailable, "remote sync is not configured")
		return
	}
	st, err := orchestrators.ExecutePull(r.Context(), orchestrators.PullDeps{
		State:     deps.State,
		Remote:    deps.Remote,
		Snapshots: deps.Snapshots,
		Now:       deps.Now,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeSuccess(w, st.Data(deps.Now()))
}

// handleRetryOutboxEntry forces one stuck entry through its executor,
// ignoring the backoff window.
func handleRetryOutboxEntry(w http.ResponseWriter, r *http.Request) {
	if deps.Processor == nil {
		writeError(w, http.StatusServiceUnavailable, "outbox processing is not enabled")
		return
	}
	if err := deps.Processor.ProcessSingle(r.Context(), r.PathValue("id")); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"processed": true})
}
