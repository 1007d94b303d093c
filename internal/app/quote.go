package app

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/jsamuelsen/message-notifier/internal/ports"
)

const (
	// QuoteWidth is the column at which quoted bodies wrap.
	QuoteWidth = 55

	// QuoteMarker prefixes every quoted line.
	QuoteMarker = "> "

	// quoteHeaderKey is the translatable layout of a quoted reply.
	quoteHeaderKey = "%[1]v wrote:\n%[2]s"
)

// QuoteFormatter builds the quoted text placed into reply bodies.
type QuoteFormatter struct {
	localizer ports.Localizer
}

// NewQuoteFormatter creates a formatter. A nil localizer prints the
// untranslated English layout.
func NewQuoteFormatter(localizer ports.Localizer) *QuoteFormatter {
	if localizer == nil {
		localizer = IdentityLocalizer{}
	}

	return &QuoteFormatter{localizer: localizer}
}

// FormatQuote wraps body at QuoteWidth, prefixes each line with QuoteMarker
// and places the result under a "sender wrote:" header. An empty body yields
// a single quoted empty line.
func (f *QuoteFormatter) FormatQuote(sender any, body string) string {
	return f.localizer.Sprintf(quoteHeaderKey, sender, QuoteBody(body))
}

// QuoteBody returns body wrapped and marked as quoted, without a header.
func QuoteBody(body string) string {
	lines := strings.Split(wrap(body, QuoteWidth), "\n")
	for i, line := range lines {
		lines[i] = QuoteMarker + line
	}

	return strings.Join(lines, "\n")
}

// wrap breaks text at spaces so no line exceeds width, keeping existing
// newlines. Words longer than width stay whole on their own line.
func wrap(text string, width int) string {
	w := wordwrap.NewWriter(width)
	w.Breakpoints = nil

	_, _ = w.Write([]byte(text))
	_ = w.Close()

	return w.String()
}

// IdentityLocalizer formats keys without translation.
type IdentityLocalizer struct{}

// Sprintf formats key with args.
func (IdentityLocalizer) Sprintf(key string, args ...any) string {
	return fmt.Sprintf(key, args...)
}
