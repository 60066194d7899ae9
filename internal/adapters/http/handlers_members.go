package web

import (
	"net/http"

	"arisan/internal/application/orchestrators"
)

func handleListMembers(w http.ResponseWriter, r *http.Request) {
	st := deps.State.Current()
	writeJSON(w, http.StatusOK, st.Members)
}

func handleAddMember(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	m, err := orchestrators.ExecuteAddMember(r.Context(), orchestrators.AddMemberInput{
		Name:  body.Name,
		Email: body.Email,
		Phone: body.Phone,
	}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		IsActive *bool   `json:"isActive"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := orchestrators.ExecuteUpdateMember(r.Context(), orchestrators.UpdateMemberInput{
		MemberID: r.PathValue("id"),
		Name:     body.Name,
		Email:    body.Email,
		Phone:    body.Phone,
		IsActive: body.IsActive,
	}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Members)
}

func handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	st, err := orchestrators.ExecuteDeleteMember(r.Context(), orchestrators.DeleteMemberInput{
		MemberID: r.PathValue("id"),
	}, deps.mutation())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Members)
}
