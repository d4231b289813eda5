package model

import (
	"fmt"
	"sort"
)

// WarningKind classifies a non-fatal finding.
type WarningKind int

const (
	// WarningReferentialIntegrity: a transaction referenced an unknown
	// customer or product and was dropped.
	WarningReferentialIntegrity WarningKind = iota
	// WarningMissingValue: a required field was missing and resolved to 0
	// or UnknownCategory.
	WarningMissingValue
	// WarningNonConvergence: k-means hit its iteration cap.
	WarningNonConvergence
	// WarningDuplicate: a record with an already seen key was dropped.
	WarningDuplicate
)

func (k WarningKind) String() string {
	switch k {
	case WarningReferentialIntegrity:
		return "ReferentialIntegrity"
	case WarningMissingValue:
		return "MissingValue"
	case WarningNonConvergence:
		return "NonConvergence"
	case WarningDuplicate:
		return "Duplicate"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Warning is a single non-fatal finding.
type Warning struct {
	Kind WarningKind
	// Subject is the key of the affected record (transaction, customer, k).
	Subject string
	Detail  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s[%s]: %s", w.Kind, w.Subject, w.Detail)
}

// Warnings collects findings in the order they were raised.
// The zero value is ready to use. Not safe for concurrent use.
type Warnings struct {
	items []Warning
}

// Add records a warning.
func (w *Warnings) Add(kind WarningKind, subject, format string, args ...any) {
	w.items = append(w.items, Warning{
		Kind:    kind,
		Subject: subject,
		Detail:  fmt.Sprintf(format, args...),
	})
}

// Merge appends all warnings of other.
func (w *Warnings) Merge(other Warnings) {
	w.items = append(w.items, other.items...)
}

// Len returns the number of warnings.
func (w Warnings) Len() int { return len(w.items) }

// Items returns a copy of all warnings.
func (w Warnings) Items() []Warning {
	return append([]Warning(nil), w.items...)
}

// Count returns the number of warnings of the given kind.
func (w Warnings) Count(kind WarningKind) int {
	n := 0
	for _, it := range w.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

// Counts returns the number of warnings per kind.
func (w Warnings) Counts() map[WarningKind]int {
	out := make(map[WarningKind]int)
	for _, it := range w.items {
		out[it.Kind]++
	}
	return out
}

// Kinds returns the distinct kinds present, in ascending order.
func (w Warnings) Kinds() []WarningKind {
	counts := w.Counts()
	kinds := make([]WarningKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
