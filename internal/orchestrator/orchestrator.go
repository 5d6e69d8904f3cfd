package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pagereaper/pagereaper/internal/artifact"
	"github.com/pagereaper/pagereaper/internal/extract"
	"github.com/pagereaper/pagereaper/internal/liveness"
	"github.com/pagereaper/pagereaper/internal/utils/logger"

	"go.uber.org/ratelimit"
)

// Surface is the remote execution surface: an owned browser tab that can be
// navigated and asked to run the extraction, streaming liveness pings
// out-of-band while it computes.
type Surface interface {
	Navigate(ctx context.Context, url string) error
	Extract(ctx context.Context, url string) ([]extract.Record, error)
	Pings() <-chan struct{}
}

// Store is the durable work queue the run consumes from.
type Store interface {
	Load() ([]string, error)
	RemoveOne(item string) error
}

// Emitter persists per-item artifacts and the remaining-queue snapshot.
type Emitter interface {
	Emit(itemURL string, records []extract.Record) (string, error)
	Snapshot(remaining []string) error
}

// Options tunes one run.
type Options struct {
	// StallTimeout is the liveness window; no ping for this long marks the
	// in-flight item stalled. Zero means 30 seconds.
	StallTimeout time.Duration
	// SettleDelay is the fixed wait between load-complete and extraction,
	// covering the client-side rendering race after navigation.
	SettleDelay time.Duration
	// Pause paces iterations so requests against the target never overlap.
	// Nil means unlimited.
	Pause ratelimit.Limiter
	// Status observes phase transitions. Nil means no observer.
	Status StatusSink
}

// Orchestrator drives the main loop: one work item in flight at a time,
// every classification branch ends in removal and the loop continuing.
type Orchestrator struct {
	store   Store
	surface Surface
	emitter Emitter
	monitor *liveness.Monitor

	stallTimeout time.Duration
	settleDelay  time.Duration
	pause        ratelimit.Limiter
	status       StatusSink
}

func New(store Store, surface Surface, emitter Emitter, monitor *liveness.Monitor, opts Options) *Orchestrator {
	if opts.StallTimeout <= 0 {
		opts.StallTimeout = 30 * time.Second
	}
	if opts.Pause == nil {
		opts.Pause = ratelimit.NewUnlimited()
	}
	if opts.Status == nil {
		opts.Status = nopSink{}
	}
	if monitor == nil {
		monitor = liveness.New()
	}

	return &Orchestrator{
		store:        store,
		surface:      surface,
		emitter:      emitter,
		monitor:      monitor,
		stallTimeout: opts.StallTimeout,
		settleDelay:  opts.SettleDelay,
		pause:        opts.Pause,
		status:       opts.Status,
	}
}

// Run processes the queue until it is empty or ctx is cancelled. Per-item
// failures never halt the loop; they become recorded outcomes. The queue is
// reloaded before every iteration so external edits between runs (or during
// idle periods) are honored.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	for {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		items, err := o.store.Load()
		if err != nil {
			return sum, fmt.Errorf("failed to reload work queue: %w", err)
		}
		if len(items) == 0 {
			o.status.ReportStatus("queue empty, run complete")
			return sum, nil
		}

		item := items[0]
		outcome := o.processItem(ctx, item)
		sum.count(outcome.Kind)

		if outcome.Err != nil {
			logger.Error("Item %s ended with %s: %v", item, outcome.Kind, outcome.Err)
		}

		// Artifact write failures are logged, never fatal: the item is
		// still consumed so the run cannot wedge on a bad output path.
		if _, err := o.emitArtifact(item, outcome); err != nil {
			logger.Error("Failed to write artifact for %s: %v", item, err)
		}

		if err := o.store.RemoveOne(item); err != nil {
			return sum, fmt.Errorf("failed to remove completed item %s: %w", item, err)
		}

		remaining, err := o.store.Load()
		if err != nil {
			logger.Error("Failed to reload queue for snapshot: %v", err)
		} else if err := o.emitter.Snapshot(remaining); err != nil {
			logger.Error("Failed to write queue snapshot: %v", err)
		}

		o.status.ItemCompleted(item, outcome.Kind)
		o.pause.Take()
	}
}

// processItem runs one work item through navigate, settle, and the race
// between extraction and the liveness deadline. First resolution wins; the
// loser's signal is discarded.
func (o *Orchestrator) processItem(ctx context.Context, item string) Outcome {
	o.status.ReportStatus("navigating to " + item)

	if err := o.surface.Navigate(ctx, item); err != nil {
		return Outcome{Kind: OutcomeError, Err: fmt.Errorf("navigation: %w", err)}
	}

	if o.settleDelay > 0 {
		time.Sleep(o.settleDelay)
	}

	o.status.ReportStatus("extracting " + item)

	o.drainStalePings()

	resCh := make(chan Outcome, 1)
	var once sync.Once
	resolve := func(out Outcome) {
		once.Do(func() { resCh <- out })
	}

	o.monitor.Arm(o.stallTimeout, func() {
		resolve(Outcome{Kind: OutcomeStalled})
	})
	defer o.monitor.Cancel()

	// Cancelling extractCtx on exit stops the surface-side work once the
	// item has settled; a result that still arrives is dropped by resolve.
	extractCtx, stopExtract := context.WithCancel(ctx)
	defer stopExtract()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-o.surface.Pings():
				o.monitor.Ping()
			case <-done:
				return
			}
		}
	}()

	go func() {
		records, err := o.surface.Extract(extractCtx, item)
		if err != nil {
			resolve(Outcome{Kind: OutcomeError, Err: fmt.Errorf("extraction: %w", err)})
			return
		}
		resolve(classify(records))
	}()

	outcome := <-resCh
	o.monitor.Cancel()
	return outcome
}

// drainStalePings discards pings buffered from the previous item so they
// cannot reset the fresh deadline.
func (o *Orchestrator) drainStalePings() {
	for {
		select {
		case <-o.surface.Pings():
		default:
			return
		}
	}
}

func classify(records []extract.Record) Outcome {
	if len(records) == 0 {
		return Outcome{Kind: OutcomeEmpty}
	}
	if len(records) == 1 && records[0].IsSentinel() {
		return Outcome{Kind: OutcomeEmptySentinel, Records: records}
	}
	return Outcome{Kind: OutcomeSuccess, Records: records}
}

func (o *Orchestrator) emitArtifact(item string, outcome Outcome) (string, error) {
	var rows []extract.Record

	switch outcome.Kind {
	case OutcomeSuccess, OutcomeEmptySentinel:
		rows = outcome.Records
	case OutcomeEmpty:
		rows = []extract.Record{artifact.NoContentRecord(item)}
	case OutcomeStalled:
		rows = []extract.Record{artifact.SkippedRecord(item)}
	case OutcomeError:
		rows = []extract.Record{artifact.ErrorRecord(item, outcome.Err)}
	}

	return o.emitter.Emit(item, rows)
}
