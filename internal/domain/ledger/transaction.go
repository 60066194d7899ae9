package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction type constants.
const (
	TypeSaving    = "saving"
	TypeReceiving = "receiving"
)

// Transaction status constants.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// UnitContribution is the fixed per-member weekly contribution in rupiah.
var UnitContribution = decimal.NewFromInt(100000)

// Domain errors
var (
	ErrEmptyMemberID   = errors.New("transaction member ID cannot be empty")
	ErrInvalidType     = errors.New("transaction type must be saving or receiving")
	ErrInvalidWeek     = errors.New("transaction week must be at least 1")
	ErrMemberNotFound  = errors.New("member not found")
	ErrAlreadyReceived = errors.New("member already received for this week")
	ErrWeekIncomplete  = errors.New("every active member must save before a payout")
)

// Transaction is one immutable ledger entry. MemberName is denormalized
// so history survives roster deletions.
type Transaction struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"` // saving | receiving
	MemberID   string          `json:"memberId"`
	MemberName string          `json:"memberName"`
	Amount     decimal.Decimal `json:"amount"`
	Week       int             `json:"week"`
	Date       time.Time       `json:"date"`
	Status     string          `json:"status"`
}

// Validate checks that the Transaction has valid data.
// PRE: Transaction struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Transaction) Validate() error {
	if t.MemberID == "" {
		return ErrEmptyMemberID
	}
	if t.Type != TypeSaving && t.Type != TypeReceiving {
		return ErrInvalidType
	}
	if t.Week < 1 {
		return ErrInvalidWeek
	}
	return nil
}
