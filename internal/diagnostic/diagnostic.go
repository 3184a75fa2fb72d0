// Diagnostic reporting for the timed-automata analyzer.
// The analyzer never prints; everything flows through a Handler
// which collects positioned errors and warnings for the caller.

package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dannybpoulsen/utap/internal/position"
)

// Level represents the severity level of a diagnostic message.
type Level int

const (
	LevelError Level = iota
	LevelWarning
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Message string
	Pos     position.Position
	Level   Level
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Level, d.Message)
}

// Handler collects diagnostics produced during analysis. It is the
// error sink consumed by the parser, the loader and the type checker.
type Handler struct {
	diagnostics []Diagnostic
	errors      int
	warnings    int
}

// NewHandler creates an empty diagnostic handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Error records an error at the given position.
func (h *Handler) Error(pos position.Position, format string, args ...any) {
	h.diagnostics = append(h.diagnostics, Diagnostic{
		Level:   LevelError,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	})
	h.errors++
}

// Warning records a warning at the given position.
func (h *Handler) Warning(pos position.Position, format string, args ...any) {
	h.diagnostics = append(h.diagnostics, Diagnostic{
		Level:   LevelWarning,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	})
	h.warnings++
}

// HasErrors returns true if at least one error was recorded.
func (h *Handler) HasErrors() bool {
	return h.errors > 0
}

// ErrorCount returns the number of errors recorded.
func (h *Handler) ErrorCount() int {
	return h.errors
}

// WarningCount returns the number of warnings recorded.
func (h *Handler) WarningCount() int {
	return h.warnings
}

// Diagnostics returns the recorded diagnostics sorted by position.
func (h *Handler) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(h.diagnostics))
	copy(out, h.diagnostics)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos.Before(out[j].Pos)
	})
	return out
}

// Report renders all diagnostics, one per line, sorted by position.
func (h *Handler) Report() string {
	var sb strings.Builder
	for _, d := range h.Diagnostics() {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Reset discards all recorded diagnostics.
func (h *Handler) Reset() {
	h.diagnostics = nil
	h.errors = 0
	h.warnings = 0
}
