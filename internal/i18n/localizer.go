package i18n

import (
	"time"

	"golang.org/x/text/message"
)

// Localizer is an immutable view of one locale, so a single render pass never
// mixes two languages even if the operator switches mid-render.
type Localizer struct {
	code    Code
	dict    Dictionary
	printer *message.Printer
}

func NewLocalizer(code Code, dict Dictionary) *Localizer {
	return &Localizer{
		code:    code,
		dict:    dict,
		printer: message.NewPrinter(code.Tag()),
	}
}

func (l *Localizer) Code() Code {
	return l.code
}

// T resolves path; unresolved paths come back unchanged.
func (l *Localizer) T(path string) string {
	return Resolve(l.dict, path)
}

// Count formats n with the locale's thousands grouping.
func (l *Localizer) Count(n int64) string {
	return l.printer.Sprintf("%d", n)
}

// Clock formats a timestamp as a local wall-clock time, empty for the zero time.
func (l *Localizer) Clock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("15:04:05")
}
