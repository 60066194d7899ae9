package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"arisan/internal/adapters/email"
	"arisan/internal/adapters/imagehost"
	"arisan/internal/adapters/remote"
	"arisan/internal/adapters/storage"
	outboxStore "arisan/internal/adapters/storage/outbox"
	snapshotStore "arisan/internal/adapters/storage/snapshot"
	"arisan/internal/application/state"
	"arisan/internal/domain/ledger"
)

var apiTestTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// newTestHandler wires the full middleware chain against in-memory
// stores, the way main does it.
func newTestHandler(t *testing.T) (http.Handler, *Deps) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}

	seq := 0
	d := &Deps{
		State:     state.NewContainer(ledger.Default()),
		Snapshots: snapshotStore.NewSQLiteStore(db),
		Outbox:    outboxStore.NewSQLiteStore(db),
		Remote:    remote.NoopClient{},
		Sender:    &email.NoopSender{},
		Uploader:  imagehost.InlineUploader{},
		GenerateID: func() string {
			seq++
			return fmt.Sprintf("test-id-%d", seq)
		},
		Now: func() time.Time { return apiTestTime },
	}

	RateLimitPerSecond = 1000
	key := make([]byte, 32)
	return NewMux(d, key, false), d
}

// doJSON sends a JSON request through the full middleware chain.
func doJSON(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// login authenticates with the default password and returns the session
// cookie.
func login(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/login", map[string]string{"password": "1998"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "arisan_session" {
			return c
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func TestGetDataDefaults(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/data", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Success bool        `json:"success"`
		Data    ledger.Data `json:"data"`
	}
	decodeBody(t, rec, &envelope)
	if !envelope.Success {
		t.Error("expected success=true")
	}
	if len(envelope.Data.Members) != 5 {
		t.Errorf("expected 5 default members, got %d", len(envelope.Data.Members))
	}
	if envelope.Data.CurrentWeek != 1 {
		t.Errorf("expected week 1, got %d", envelope.Data.CurrentWeek)
	}
}

func TestLoginFlow(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/login", map[string]string{"password": "salah"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", rec.Code)
	}

	cookie := login(t, h)

	rec = doJSON(t, h, http.MethodGet, "/api/session", nil, cookie)
	var session map[string]bool
	decodeBody(t, rec, &session)
	if !session["isAdmin"] {
		t.Error("expected isAdmin=true with session cookie")
	}

	rec = doJSON(t, h, http.MethodPost, "/api/logout", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed with status %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/session", nil, cookie)
	decodeBody(t, rec, &session)
	if session["isAdmin"] {
		t.Error("expected isAdmin=false after logout")
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/members", map[string]string{"name": "Sari"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", rec.Code)
	}
}

func TestMemberLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/members", map[string]string{
		"name":  "  Sari  ",
		"email": "sari@example.com",
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeBody(t, rec, &created)
	if created.Name != "Sari" {
		t.Errorf("expected trimmed name Sari, got %q", created.Name)
	}
	if created.ID == "" {
		t.Fatal("expected a generated member id")
	}

	inactive := false
	rec = doJSON(t, h, http.MethodPatch, "/api/members/"+created.ID, map[string]any{
		"isActive": inactive,
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch failed with status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/members/"+created.ID, nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed with status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/members/"+created.ID, nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleting a ghost member: expected 404, got %d", rec.Code)
	}
}

func TestPayoutRequiresFullWeek(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/weeks/1/savings", map[string]string{"memberId": "1"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark saved failed with status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/weeks/1/payout", map[string]string{"memberId": "1"}, cookie)
	if rec.Code != http.StatusConflict {
		t.Errorf("payout before everyone saved: expected 409, got %d", rec.Code)
	}
}

func TestPayoutAfterFullWeek(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	for _, id := range []string{"1", "2", "3", "4", "5"} {
		rec := doJSON(t, h, http.MethodPost, "/api/weeks/1/savings", map[string]string{"memberId": id}, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("mark saved %s failed with status %d", id, rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodPost, "/api/weeks/1/payout", map[string]string{"memberId": "1"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("payout failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var payout struct {
		Payout string `json:"payout"`
	}
	decodeBody(t, rec, &payout)
	if payout.Payout != "400000" {
		t.Errorf("expected payout 400000, got %q", payout.Payout)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/weeks/1/payout", map[string]string{"memberId": "1"}, cookie)
	if rec.Code != http.StatusConflict {
		t.Errorf("double payout: expected 409, got %d", rec.Code)
	}
}

func TestSendEmailValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/email", map[string]any{
		"memberName": "Sari",
		"week":       3,
		"amount":     "400000",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing to: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/email", map[string]any{
		"to":         "sari@example.com",
		"memberName": "Sari",
		"week":       3,
		"amount":     "400000",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	decodeBody(t, rec, &envelope)
	if !envelope.Success {
		t.Error("expected success=true")
	}
	if envelope.Data["id"] == "" {
		t.Error("expected a message id")
	}
}

func TestImportDataKeepsPinnedWeek(t *testing.T) {
	h, d := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/data", map[string]any{
		"currentWeek":         3,
		"isCurrentWeekManual": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("import failed with status %d: %s", rec.Code, rec.Body.String())
	}

	st := d.State.Current()
	if st.CurrentWeek != 3 {
		t.Errorf("expected pinned week 3, got %d", st.CurrentWeek)
	}
	if !st.ManualWeek {
		t.Error("expected manual week flag to survive the import")
	}
}

func TestGalleryViaURL(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/gallery", map[string]string{
		"name":     "Kumpul minggu ke-2",
		"imageUrl": "https://images.example/kumpul.jpg",
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var item struct {
		ID       string `json:"id"`
		ImageURL string `json:"imageUrl"`
	}
	decodeBody(t, rec, &item)
	if item.ImageURL != "https://images.example/kumpul.jpg" {
		t.Errorf("unexpected image url %q", item.ImageURL)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/gallery", map[string]string{"name": "tanpa gambar"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("gallery without image: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/gallery/"+item.ID, nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed with status %d", rec.Code)
	}
}

func TestChangePasswordFlow(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/admin/password", map[string]string{
		"currentPassword": "salah",
		"newPassword":     "rahasia",
	}, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong current password: expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/admin/password", map[string]string{
		"currentPassword": "1998",
		"newPassword":     "rahasia",
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("change password failed with status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/login", map[string]string{"password": "rahasia"})
	if rec.Code != http.StatusOK {
		t.Errorf("login with rotated password: expected 200, got %d", rec.Code)
	}
}

func TestSyncStatusEmpty(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/admin/sync", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var status struct {
		Pending int `json:"Pending"`
		Failed  int `json:"Failed"`
	}
	decodeBody(t, rec, &status)
	if status.Failed != 0 {
		t.Errorf("expected no failed entries, got %d", status.Failed)
	}
}

func TestWeekParamValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/weeks/zero/savings", map[string]string{"memberId": "1"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric week: expected 400, got %d", rec.Code)
	}
}

func TestGalleryMultipartUpload(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("name", "Kumpul di rumah Ibu Sari"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := form.CreateFormFile("image", "kumpul.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("jpeg-bytes")); err != nil {
		t.Fatalf("write image: %v", err)
	}
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/gallery", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var item struct {
		ImageURL string `json:"imageUrl"`
	}
	decodeBody(t, rec, &item)
	if !strings.HasPrefix(item.ImageURL, "data:") {
		t.Errorf("expected an inline data URL, got %q", item.ImageURL)
	}
}

func TestMultipartWithoutSessionBlocked(t *testing.T) {
	h, _ := newTestHandler(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("name", "tanpa sesi")
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/gallery", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("multipart without session: expected 403, got %d", rec.Code)
	}
}

func TestImportDataIgnoresUnknownFields(t *testing.T) {
	h, d := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/data", map[string]any{
		"currentWeek":         4,
		"isCurrentWeekManual": true,
		"lastSynced":          "2026-03-01T00:00:00Z",
		"theme":               "legacy",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("import with extra keys failed with status %d: %s", rec.Code, rec.Body.String())
	}
	if got := d.State.Current().CurrentWeek; got != 4 {
		t.Errorf("expected pinned week 4, got %d", got)
	}
}

func TestPullUnavailableWithoutRemote(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/admin/sync/pull", nil, cookie)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("pull without a remote: expected 503, got %d", rec.Code)
	}
}

func TestSetScheduleRejectsWrongWeekday(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	// 2026-03-04 is a Wednesday; the schedule says Monday.
	rec := doJSON(t, h, http.MethodPut, "/api/schedule", map[string]any{
		"dayOfWeek": 1,
		"time":      "09:00",
		"startDate": "2026-03-04",
	}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("mismatched start date: expected 400, got %d", rec.Code)
	}
}
