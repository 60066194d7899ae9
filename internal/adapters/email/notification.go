package email

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"arisan/internal/domain/ledger"
)

// Validation errors for notification requests. These map to 400s at the
// HTTP layer.
var (
	ErrMissingTo         = errors.New("recipient address is required")
	ErrMissingMemberName = errors.New("member name is required")
	ErrMissingWeek       = errors.New("week is required")
	ErrMissingAmount     = errors.New("amount is required")
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Notification is a payout notice for the member whose turn it is.
// The JSON shape doubles as the outbox payload and the API request body.
type Notification struct {
	To         string          `json:"to"`
	MemberName string          `json:"memberName"`
	Week       int             `json:"week"`
	Amount     decimal.Decimal `json:"amount"`
}

// Validate checks that every field is present.
// POST: Returns nil if valid, the first missing-field error otherwise
func (n Notification) Validate() error {
	if n.To == "" {
		return ErrMissingTo
	}
	if n.MemberName == "" {
		return ErrMissingMemberName
	}
	if n.Week <= 0 {
		return ErrMissingWeek
	}
	if n.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrMissingAmount
	}
	return nil
}

// Compose renders the payout notification into a SendRequest.
// PRE: n has been validated
// POST: Returns a request with rendered HTML body
func (n Notification) Compose() (SendRequest, error) {
	md := fmt.Sprintf(`# Selamat, %s!

Minggu ke-**%d** adalah giliran Anda menerima arisan.

Jumlah yang Anda terima: **%s**

Silakan hubungi bendahara untuk pencairan.

Terima kasih sudah rutin menabung.`,
		n.MemberName, n.Week, FormatRupiah(n.Amount))

	html, err := renderMarkdown(md)
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		To:      []string{n.To},
		Subject: fmt.Sprintf("Arisan Minggu ke-%d: Giliran %s", n.Week, n.MemberName),
		HTML:    html,
	}, nil
}

// Reminder is a weekly contribution nudge for one member.
type Reminder struct {
	To         string
	MemberName string
	Week       int
}

// Compose renders the reminder into a SendRequest.
// PRE: To and MemberName are non-empty, Week > 0
// POST: Returns a request with rendered HTML body
func (r Reminder) Compose() (SendRequest, error) {
	md := fmt.Sprintf(`# Halo, %s

Jangan lupa setoran arisan minggu ke-**%d** sebesar **%s**.

Terima kasih!`,
		r.MemberName, r.Week, FormatRupiah(ledger.UnitContribution))

	html, err := renderMarkdown(md)
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		To:      []string{r.To},
		Subject: fmt.Sprintf("Pengingat Setoran Arisan Minggu ke-%d", r.Week),
		HTML:    html,
	}, nil
}

// renderMarkdown converts markdown to HTML with the shared renderer.
func renderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// FormatRupiah renders an amount as "Rp100.000" with dot separators.
// Fractions are dropped; rupiah amounts in this domain are whole.
func FormatRupiah(d decimal.Decimal) string {
	digits := d.Truncate(0).String()
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-Rp" + b.String()
	}
	return "Rp" + b.String()
}
