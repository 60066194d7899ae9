package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"arisan/internal/adapters/email"
	"arisan/internal/adapters/http/middleware"
	"arisan/internal/application/orchestrators"
	"arisan/internal/domain/gallery"
	"arisan/internal/domain/ledger"
	"arisan/internal/domain/member"
	"arisan/internal/domain/schedule"
)

// timeNow is a variable to allow mocking in tests
var timeNow = time.Now

// generateID returns a new unique id for domain objects.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and sends a generic 500 so internals
// never leak to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "internal server error",
		"details": "the operation could not be completed",
	})
}

// strictDecode decodes JSON rejecting unknown fields, so typos in client
// payloads fail loudly instead of being silently dropped.
func strictDecode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// successEnvelope is the wire shape of the data exchange endpoints.
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// domainError maps domain sentinel errors onto HTTP statuses. Unknown
// errors become a generic 500.
func domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrMemberNotFound),
		errors.Is(err, orchestrators.ErrMemberNotFound),
		errors.Is(err, orchestrators.ErrGalleryItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrWeekIncomplete),
		errors.Is(err, ledger.ErrAlreadyReceived):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, orchestrators.ErrInvalidWeek),
		errors.Is(err, ledger.ErrInvalidWeek),
		errors.Is(err, member.ErrEmptyName),
		errors.Is(err, gallery.ErrEmptyName),
		errors.Is(err, schedule.ErrInvalidDay),
		errors.Is(err, schedule.ErrInvalidTime),
		errors.Is(err, orchestrators.ErrStartDateMismatch),
		errors.Is(err, orchestrators.ErrPasswordTooWeak),
		errors.Is(err, orchestrators.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orchestrators.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		internalError(w, err)
	}
}

// registerRoutes wires every API route onto the mux. Mutating routes for
// ledger bookkeeping require an admin session; the read side stays open
// so members can follow along without logging in.
func registerRoutes(mux *http.ServeMux) {
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(h)
	}

	// Remote-document exchange, kept compatible with the old client.
	mux.HandleFunc("GET /api/data", handleGetData)
	mux.HandleFunc("POST /api/data", handleImportData)
	mux.HandleFunc("POST /api/email", handleSendEmail)

	// Session
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)
	mux.HandleFunc("GET /api/session", handleSession)

	// Read side
	mux.HandleFunc("GET /api/dashboard", handleDashboard)
	mux.HandleFunc("GET /api/members", handleListMembers)
	mux.HandleFunc("GET /api/weeks/{week}", handleWeekReport)
	mux.HandleFunc("GET /api/reports/savings", handleSavingsReport)
	mux.HandleFunc("GET /api/gallery", handleListGallery)

	// Roster
	mux.Handle("POST /api/members", admin(handleAddMember))
	mux.Handle("PATCH /api/members/{id}", admin(handleUpdateMember))
	mux.Handle("DELETE /api/members/{id}", admin(handleDeleteMember))

	// Weekly bookkeeping
	mux.Handle("POST /api/weeks/{week}/savings", admin(handleMarkSaved))
	mux.Handle("DELETE /api/weeks/{week}/savings/{memberId}", admin(handleUnmarkSaved))
	mux.Handle("POST /api/weeks/{week}/payout", admin(handleMarkReceived))
	mux.Handle("DELETE /api/weeks/{week}/payout/{memberId}", admin(handleUnmarkReceived))
	mux.Handle("POST /api/weeks/{week}/complete", admin(handleCompleteWeek))
	mux.Handle("DELETE /api/weeks/{week}/complete", admin(handleUncompleteWeek))
	mux.Handle("PUT /api/week", admin(handleSetCurrentWeek))
	mux.Handle("DELETE /api/week", admin(handleClearWeekPin))
	mux.Handle("PUT /api/schedule", admin(handleSetSchedule))

	// Gallery
	mux.Handle("POST /api/gallery", admin(handleAddGalleryItem))
	mux.Handle("DELETE /api/gallery/{id}", admin(handleDeleteGalleryItem))

	// Admin settings and sync
	mux.Handle("POST /api/admin/password", admin(handleChangePassword))
	mux.Handle("PUT /api/admin/email", admin(handleSetAdminEmail))
	mux.Handle("PUT /api/admin/darkmode", admin(handleSetDarkMode))
	mux.Handle("POST /api/admin/reset", admin(handleReset))
	mux.Handle("POST /api/admin/reminders", admin(handleSendReminders))
	mux.Handle("GET /api/admin/sync", admin(handleSyncStatus))
	mux.Handle("POST /api/admin/sync/pull", admin(handlePull))
	mux.Handle("POST /api/admin/outbox/{id}/retry", admin(handleRetryOutboxEntry))
}

// handleGetData returns the current ledger document in the shape the
// remote store holds, wrapped in the success envelope.
func handleGetData(w http.ResponseWriter, r *http.Request) {
	st := deps.State.Current()
	writeSuccess(w, st.Data(deps.Now()))
}

// handleImportData merges an uploaded document into the ledger, the same
// way a remote pull would. Used by clients migrating an existing document.
func handleImportData(w http.ResponseWriter, r *http.Request) {
	// Absent fields keep their defaults, the same resolution a remote
	// pull applies. Unknown fields are ignored: documents exported by
	// older clients carry extra keys.
	doc := ledger.DefaultData()
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := orchestrators.ExecuteImportData(r.Context(), orchestrators.ImportDataInput{Data: doc}, deps.mutation())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "failed to store data",
			"details": err.Error(),
		})
		return
	}
	writeSuccess(w, st.Data(deps.Now()))
}

// handleSendEmail sends a payout notification immediately. Any missing
// field is a 400 naming the field.
func handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var n email.Notification
	if err := strictDecode(r, &n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := n.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := n.Compose()
	if err != nil {
		internalError(w, err)
		return
	}
	req.ReplyTo = deps.ReplyTo

	result, err := deps.Sender.Send(r.Context(), req)
	if err != nil {
		internalError(w, err)
		return
	}
	writeSuccess(w, map[string]string{"id": result.MessageID})
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{Password: body.Password}, orchestrators.LoginDeps{State: deps.State})
	if err != nil {
		// Same message for wrong and empty passwords, no oracle.
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	token, err := sessions.Create()
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]bool{"isAdmin": true})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("arisan_session"); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"isAdmin": false})
}

func handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"isAdmin": middleware.IsAdmin(r.Context())})
}
