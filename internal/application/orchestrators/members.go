package orchestrators

import (
	"context"
	"errors"
	"strings"

	"arisan/internal/domain/ledger"
	"arisan/internal/domain/member"
)

// ErrMemberNotFound is returned when a member id does not resolve.
var ErrMemberNotFound = errors.New("member not found")

// AddMemberInput carries input for the add-member orchestrator.
type AddMemberInput struct {
	Name  string
	Email string
	Phone string
}

// ExecuteAddMember appends a new member to the roster.
// PRE: Name is non-empty after trimming
// POST: Member appended with a fresh id, active, zero savings
func ExecuteAddMember(ctx context.Context, input AddMemberInput, deps MutationDeps) (member.Member, error) {
	m := member.New(deps.GenerateID(), strings.TrimSpace(input.Name), strings.TrimSpace(input.Email), strings.TrimSpace(input.Phone))
	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}

	_, err := applyMutation(ctx, deps, "member_added", func(st ledger.State) (ledger.State, error) {
		return st.AddMember(m), nil
	})
	if err != nil {
		return member.Member{}, err
	}
	return m, nil
}

// UpdateMemberInput carries input for the update-member orchestrator.
// Nil pointers mean "leave as is".
type UpdateMemberInput struct {
	MemberID string
	Name     *string
	Email    *string
	Phone    *string
	IsActive *bool
}

// ExecuteUpdateMember patches an existing member.
// PRE: MemberID is non-empty
// POST: Named fields updated; rotation order unchanged
func ExecuteUpdateMember(ctx context.Context, input UpdateMemberInput, deps MutationDeps) (ledger.State, error) {
	if input.MemberID == "" {
		return ledger.State{}, ErrMemberNotFound
	}
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return ledger.State{}, member.ErrEmptyName
		}
		input.Name = &trimmed
	}

	return applyMutation(ctx, deps, "member_updated", func(st ledger.State) (ledger.State, error) {
		if !hasMember(st, input.MemberID) {
			return ledger.State{}, ErrMemberNotFound
		}
		return st.UpdateMember(input.MemberID, ledger.MemberUpdate{
			Name:     input.Name,
			Email:    input.Email,
			Phone:    input.Phone,
			IsActive: input.IsActive,
		})
	})
}

// DeleteMemberInput carries input for the delete-member orchestrator.
type DeleteMemberInput struct {
	MemberID string
}

// ExecuteDeleteMember removes a member from the roster.
// PRE: MemberID is non-empty
// POST: Member removed; their transactions stay in the ledger
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps MutationDeps) (ledger.State, error) {
	if input.MemberID == "" {
		return ledger.State{}, ErrMemberNotFound
	}

	return applyMutation(ctx, deps, "member_deleted", func(st ledger.State) (ledger.State, error) {
		if !hasMember(st, input.MemberID) {
			return ledger.State{}, ErrMemberNotFound
		}
		return st.DeleteMember(input.MemberID), nil
	})
}

// hasMember reports whether the roster contains id.
func hasMember(st ledger.State, id string) bool {
	for _, m := range st.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}
