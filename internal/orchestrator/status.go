package orchestrator

// StatusSink observes run progress. The orchestrator reports phase
// transitions through it but never depends on a sink being interested;
// the zero-value run uses a no-op sink.
type StatusSink interface {
	// ReportStatus replaces the rolling status line.
	ReportStatus(text string)
	// ItemCompleted is called once per processed work item.
	ItemCompleted(item string, kind OutcomeKind)
}

type nopSink struct{}

func (nopSink) ReportStatus(string)               {}
func (nopSink) ItemCompleted(string, OutcomeKind) {}
