package domain

import (
	"strings"

	"github.com/kapu/chzzk-recorder-panel/internal/util"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

func (s Severity) String() string {
	return string(s)
}

// CSSClass is the log panel class for the severity.
func (s Severity) CSSClass() string {
	return "log-" + string(s)
}

// LogEntry is one immutable line from the recorder log.
type LogEntry struct {
	Text     string
	Severity Severity
}

// ClassifyLog scans for severity tokens in priority order: error, warning, success.
func ClassifyLog(line string) Severity {
	switch {
	case util.ContainsAny(line, "ERROR", "错误"):
		return SeverityError
	case util.ContainsAny(line, "WARNING", "警告"):
		return SeverityWarning
	case util.ContainsAny(line, "SUCCESS", "成功"):
		return SeveritySuccess
	default:
		return SeverityInfo
	}
}

// TailLogs keeps the last n entries in arrival order. n <= 0 keeps everything.
func TailLogs(entries []LogEntry, n int) []LogEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	out := make([]LogEntry, n)
	copy(out, entries[len(entries)-n:])
	return out
}

// NewLogEntries classifies raw lines, keeping arrival order and trimming the trailing newline.
func NewLogEntries(lines []string) []LogEntry {
	entries := make([]LogEntry, 0, len(lines))
	for _, line := range lines {
		text := strings.TrimRight(line, "\r\n")
		entries = append(entries, LogEntry{Text: text, Severity: ClassifyLog(text)})
	}
	return entries
}
