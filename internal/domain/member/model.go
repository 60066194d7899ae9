// Package member holds the arisan group roster model.
package member

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Domain errors
var (
	ErrEmptyName   = errors.New("member name cannot be empty")
	ErrNameTooLong = errors.New("member name cannot exceed 100 characters")
)

// Member holds one participant in the rotation.
// TotalSaved is a carried-over display aggregate from legacy data; the
// pooled-cash model does not update it on contributions.
type Member struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	TotalSaved    decimal.Decimal `json:"totalSaved"`
	WeeksReceived []int           `json:"weeksReceived"`
	IsActive      bool            `json:"isActive"`
}

// New creates a Member with zeroed aggregates.
// PRE: id is non-empty; name has been validated by the caller
// POST: Returns an active member with TotalSaved=0 and no received weeks
func New(id, name, email, phone string) Member {
	return Member{
		ID:            id,
		Name:          strings.TrimSpace(name),
		Email:         email,
		Phone:         phone,
		TotalSaved:    decimal.Zero,
		WeeksReceived: []int{},
		IsActive:      true,
	}
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// HasReceived returns true if the member was already paid out for the week.
// INVARIANT: WeeksReceived is not mutated
func (m *Member) HasReceived(week int) bool {
	for _, w := range m.WeeksReceived {
		if w == week {
			return true
		}
	}
	return false
}

// Active filters the roster down to rotation participants, preserving
// insertion order. Rotation order follows live membership: adding or
// removing members reshuffles future turns.
// PRE: none
// POST: Returns a new slice; input is not mutated
func Active(members []Member) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out
}

// DefaultRoster returns the five placeholder members a fresh group starts with.
func DefaultRoster() []Member {
	names := []string{"Anggota A", "Anggota B", "Anggota C", "Anggota D", "Anggota E"}
	out := make([]Member, 0, len(names))
	for i, name := range names {
		out = append(out, New(strconv.Itoa(i+1), name, "", ""))
	}
	return out
}
