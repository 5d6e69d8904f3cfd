package orchestrator

import "github.com/pagereaper/pagereaper/internal/extract"

// OutcomeKind classifies how processing one work item ended.
type OutcomeKind int

const (
	// OutcomeSuccess means extraction returned at least one real record.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeEmpty means extraction settled with no content at all.
	OutcomeEmpty
	// OutcomeEmptySentinel means the extractor itself reported the page as
	// having no accessible content; the artifact carries its sentinel row.
	OutcomeEmptySentinel
	// OutcomeStalled means no liveness ping arrived within a full timeout
	// window and the run gave up on the item.
	OutcomeStalled
	// OutcomeError means navigation or extraction failed outright.
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeEmptySentinel:
		return "empty-sentinel"
	case OutcomeStalled:
		return "stalled"
	case OutcomeError:
		return "error"
	}
	return "unknown"
}

// Outcome is the terminal result of one work item. Exactly one Outcome is
// produced per item; a late extraction result arriving after a stall has
// already settled the item is discarded.
type Outcome struct {
	Kind    OutcomeKind
	Records []extract.Record
	Err     error
}

// Summary aggregates a whole run.
type Summary struct {
	Succeeded int
	Empty     int
	Stalled   int
	Errored   int
}

func (s *Summary) count(kind OutcomeKind) {
	switch kind {
	case OutcomeSuccess:
		s.Succeeded++
	case OutcomeEmpty, OutcomeEmptySentinel:
		s.Empty++
	case OutcomeStalled:
		s.Stalled++
	case OutcomeError:
		s.Errored++
	}
}

// Total returns the number of items processed.
func (s Summary) Total() int {
	return s.Succeeded + s.Empty + s.Stalled + s.Errored
}
