package web

import (
	"net/http"
	"strconv"
	"time"

	"arisan/internal/application/orchestrators"
	"arisan/internal/application/projections"
)

// weekParam parses the {week} path segment. Returns 0 and writes a 400
// when the value is not a positive integer.
func weekParam(w http.ResponseWriter, r *http.Request) int {
	week, err := strconv.Atoi(r.PathValue("week"))
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "week must be a positive integer")
		return 0
	}
	return week
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	result := projections.GetDashboard(projections.GetDashboardDeps{
		State: deps.State,
		Now:   deps.Now,
	})
	writeJSON(w, http.StatusOK, result)
}

func handleWeekReport(w http.ResponseWriter, r *http.Request) {
	week := weekParam(w, r)
	if week == 0 {
		return
	}
	report := projections.GetWeekReport(week, projections.GetWeekReportDeps{State: deps.State})
	writeJSON(w, http.StatusOK, report)
}

func handleSavingsReport(w http.ResponseWriter, r *http.Request) {
	report := projections.GetSavingsReport(projections.GetSavingsReportDeps{State: deps.State})
	writeJSON(w, http.StatusOK, report)
}

func handleMarkSaved(w http.ResponseWriter, r *http.Request) {
	week := weekParam(w, r)
	if week == 0 {
		return
	}
	var body struct {
		MemberID string `json:"memberId"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := orchestrators.ExecuteMarkSaved(r.Context(), orchestrators.MarkSavedInput{
		MemberID: body.MemberID,
		Week:     week,
	}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.WeekReport(week))
}

func handleUnmarkSaved(w http.ResponseWriter, r *http.Request) {
	week := weekParam(w, r)
	if week == 0 {
		return
	}
	st, err := orchestrators.ExecuteUnmarkSaved(r.Context(), orchestrators.UnmarkSavedInput{
		MemberID: r.PathValue("memberId"),
		Week:     week,
	}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.WeekReport(week))
}

func handleMarkReceived(w http.ResponseWriter, r *http.Request) {
	week := weekParam(w, r)
	if week == 0 {
		return
	}
	var body struct {
		MemberID string `json:"memberId"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := orchestrators.ExecuteMarkReceived(r.Context(), orchestrators.MarkReceivedInput{
		MemberID: body.MemberID,
		Week:     week,
	}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payout": result.Payout,
		"report": result.State.WeekReport(week),
	})
}

func handleUnmarkReceived(w http.ResponseWriter, r *http.Request) {
	week := weekParam(w, r)
	if week == 0 {
		return
	}
	st, err := orchestrators.ExecuteUnmarkReceived(r.Context(), orchestrators.UnmarkReceivedInput{
		MemberID: r.PathValue("memberId"),
		Week:     week,
	}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.WeekReport(week))
}

func handleCompleteWeek(w http.ResponseWriter, r *http.Request) {
	week := weekParam(w, r)
	if week == 0 {
		return
	}
	st, err := orchestrators.ExecuteCompleteWeek(r.Context(), orchestrators.CompleteWeekInput{Week: week}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currentWeek":    st.CurrentWeek,
		"completedWeeks": st.CompletedWeeks,
	})
}

func handleUncompleteWeek(w http.ResponseWriter, r *http.Request) {
	week := weekParam(w, r)
	if week == 0 {
		return
	}
	st, err := orchestrators.ExecuteUncompleteWeek(r.Context(), orchestrators.UncompleteWeekInput{Week: week}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currentWeek":    st.CurrentWeek,
		"completedWeeks": st.CompletedWeeks,
	})
}

func handleSetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Week int `json:"week"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := orchestrators.ExecuteSetCurrentWeek(r.Context(), orchestrators.SetCurrentWeekInput{Week: body.Week}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currentWeek": st.CurrentWeek,
		"manual":      st.ManualWeek,
	})
}

func handleClearWeekPin(w http.ResponseWriter, r *http.Request) {
	st, err := orchestrators.ExecuteClearWeekPin(r.Context(), deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currentWeek": st.CurrentWeek,
		"manual":      st.ManualWeek,
	})
}

func handleSetSchedule(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DayOfWeek int    `json:"dayOfWeek"`
		Time      string `json:"time"`
		StartDate string `json:"startDate"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.StartDate != "" {
		if _, err := time.Parse("2006-01-02", body.StartDate); err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
	}

	st, err := orchestrators.ExecuteSetSchedule(r.Context(), orchestrators.SetScheduleInput{
		DayOfWeek: body.DayOfWeek,
		Time:      body.Time,
		StartDate: body.StartDate,
		Location:  time.Local,
	}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Schedule)
}
