package orchestrator

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pagereaper/pagereaper/internal/artifact"
	"github.com/pagereaper/pagereaper/internal/extract"
)

// fakeStore is an in-memory queue recording every mutation.
type fakeStore struct {
	mu          sync.Mutex
	items       []string
	removeCalls []string
	loadCalls   int
	loadErrOn   map[int]error
}

func newFakeStore(items ...string) *fakeStore {
	return &fakeStore{items: items, loadErrOn: map[int]error{}}
}

func (s *fakeStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls++
	if err := s.loadErrOn[s.loadCalls]; err != nil {
		return nil, err
	}
	return append([]string(nil), s.items...), nil
}

func (s *fakeStore) RemoveOne(item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCalls = append(s.removeCalls, item)
	kept := s.items[:0]
	for _, it := range s.items {
		if it != item {
			kept = append(kept, it)
		}
	}
	s.items = kept
	return nil
}

func (s *fakeStore) removals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removeCalls...)
}

// fakeSurface scripts per-URL extraction behavior.
type fakeSurface struct {
	pings       chan struct{}
	navigateErr map[string]error
	extractFn   map[string]func(ctx context.Context) ([]extract.Record, error)
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		pings:       make(chan struct{}, 16),
		navigateErr: map[string]error{},
		extractFn:   map[string]func(ctx context.Context) ([]extract.Record, error){},
	}
}

func (s *fakeSurface) Navigate(ctx context.Context, url string) error {
	return s.navigateErr[url]
}

func (s *fakeSurface) Extract(ctx context.Context, url string) ([]extract.Record, error) {
	if fn, ok := s.extractFn[url]; ok {
		return fn(ctx)
	}
	return nil, nil
}

func (s *fakeSurface) Pings() <-chan struct{} {
	return s.pings
}

func (s *fakeSurface) yields(url string, records ...extract.Record) {
	s.extractFn[url] = func(context.Context) ([]extract.Record, error) {
		return records, nil
	}
}

type emitCall struct {
	item string
	rows []extract.Record
}

// fakeEmitter records artifact and snapshot writes.
type fakeEmitter struct {
	mu        sync.Mutex
	emits     []emitCall
	snapshots [][]string
}

func (e *fakeEmitter) Emit(item string, rows []extract.Record) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emits = append(e.emits, emitCall{item: item, rows: rows})
	return item + ".csv", nil
}

func (e *fakeEmitter) Snapshot(remaining []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshots = append(e.snapshots, append([]string(nil), remaining...))
	return nil
}

func (e *fakeEmitter) calls() []emitCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]emitCall(nil), e.emits...)
}

func record(url, content string) extract.Record {
	return extract.Record{PageURL: url, PageName: "Page", Content: content}
}

func TestRunProcessesAllItems(t *testing.T) {
	store := newFakeStore("https://x/a", "https://x/b", "https://x/c")
	surface := newFakeSurface()
	surface.yields("https://x/a", record("https://x/a", "p1"), record("https://x/a", "p2"))
	surface.yields("https://x/b", record("https://x/b", "p3"))
	surface.yields("https://x/c", record("https://x/c", "p4"))
	emitter := &fakeEmitter{}

	o := New(store, surface, emitter, nil, Options{StallTimeout: time.Second})
	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if sum.Succeeded != 3 || sum.Total() != 3 {
		t.Errorf("summary = %+v, want 3 successes", sum)
	}

	// Exactly one artifact per original item, in order, nothing dropped.
	calls := emitter.calls()
	if len(calls) != 3 {
		t.Fatalf("emitted %d artifacts, want 3", len(calls))
	}
	wantOrder := []string{"https://x/a", "https://x/b", "https://x/c"}
	for i, call := range calls {
		if call.item != wantOrder[i] {
			t.Errorf("artifact %d for %s, want %s", i, call.item, wantOrder[i])
		}
	}
	if len(calls[0].rows) != 2 {
		t.Errorf("first artifact has %d rows, want 2", len(calls[0].rows))
	}

	// Queue drained, no item removed twice.
	if left, _ := store.Load(); len(left) != 0 {
		t.Errorf("queue not empty after run: %v", left)
	}
	if removals := store.removals(); len(removals) != 3 {
		t.Errorf("RemoveOne called %d times, want 3", len(removals))
	}

	// The final snapshot reflects the drained queue.
	last := emitter.snapshots[len(emitter.snapshots)-1]
	if len(last) != 0 {
		t.Errorf("final snapshot = %v, want empty", last)
	}
}

func TestStallSkipsItemAndContinues(t *testing.T) {
	store := newFakeStore("https://x/stuck", "https://x/ok")
	surface := newFakeSurface()
	surface.extractFn["https://x/stuck"] = func(ctx context.Context) ([]extract.Record, error) {
		<-ctx.Done() // never pings, never finishes on its own
		return nil, ctx.Err()
	}
	surface.yields("https://x/ok", record("https://x/ok", "fine"))
	emitter := &fakeEmitter{}

	o := New(store, surface, emitter, nil, Options{StallTimeout: 30 * time.Millisecond})
	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if sum.Stalled != 1 || sum.Succeeded != 1 {
		t.Errorf("summary = %+v, want 1 stalled and 1 success", sum)
	}

	calls := emitter.calls()
	if len(calls) != 2 {
		t.Fatalf("emitted %d artifacts, want 2", len(calls))
	}
	if len(calls[0].rows) != 1 || !strings.Contains(calls[0].rows[0].Content, "Skipped") {
		t.Errorf("stalled artifact rows = %+v, want one skipped row", calls[0].rows)
	}
}

func TestLateResultAfterStallIsDiscarded(t *testing.T) {
	store := newFakeStore("https://x/slow")
	surface := newFakeSurface()
	// Resolves well after the stall fires, ignoring cancellation.
	surface.extractFn["https://x/slow"] = func(ctx context.Context) ([]extract.Record, error) {
		time.Sleep(120 * time.Millisecond)
		return []extract.Record{record("https://x/slow", "too late")}, nil
	}
	emitter := &fakeEmitter{}

	o := New(store, surface, emitter, nil, Options{StallTimeout: 25 * time.Millisecond})
	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if sum.Stalled != 1 {
		t.Fatalf("summary = %+v, want 1 stalled", sum)
	}

	// Give the late resolution every chance to misbehave.
	time.Sleep(200 * time.Millisecond)

	calls := emitter.calls()
	if len(calls) != 1 {
		t.Fatalf("late result produced an extra artifact: %d emits", len(calls))
	}
	if !strings.Contains(calls[0].rows[0].Content, "Skipped") {
		t.Errorf("artifact rows = %+v, want the skipped row", calls[0].rows)
	}
	if removals := store.removals(); len(removals) != 1 {
		t.Errorf("RemoveOne called %d times, want 1", len(removals))
	}
}

func TestPingsDeferStall(t *testing.T) {
	store := newFakeStore("https://x/slow-but-alive")
	surface := newFakeSurface()
	surface.extractFn["https://x/slow-but-alive"] = func(ctx context.Context) ([]extract.Record, error) {
		// Works for well over the stall window but pings throughout.
		for i := 0; i < 10; i++ {
			surface.pings <- struct{}{}
			time.Sleep(20 * time.Millisecond)
		}
		return []extract.Record{record("https://x/slow-but-alive", "made it")}, nil
	}
	emitter := &fakeEmitter{}

	o := New(store, surface, emitter, nil, Options{StallTimeout: 80 * time.Millisecond})
	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if sum.Succeeded != 1 || sum.Stalled != 0 {
		t.Errorf("summary = %+v, want success despite slow extraction", sum)
	}
}

func TestExtractionErrorRecordsArtifact(t *testing.T) {
	store := newFakeStore("https://x/broken", "https://x/ok")
	surface := newFakeSurface()
	surface.extractFn["https://x/broken"] = func(ctx context.Context) ([]extract.Record, error) {
		return nil, errors.New("surface unreachable")
	}
	surface.yields("https://x/ok", record("https://x/ok", "fine"))
	emitter := &fakeEmitter{}

	o := New(store, surface, emitter, nil, Options{StallTimeout: time.Second})
	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if sum.Errored != 1 || sum.Succeeded != 1 {
		t.Errorf("summary = %+v", sum)
	}

	calls := emitter.calls()
	if !strings.Contains(calls[0].rows[0].Content, "Error") {
		t.Errorf("error artifact rows = %+v", calls[0].rows)
	}
}

func TestNavigationFailureRecordsArtifact(t *testing.T) {
	store := newFakeStore("https://x/unreachable")
	surface := newFakeSurface()
	surface.navigateErr["https://x/unreachable"] = errors.New("net::ERR_NAME_NOT_RESOLVED")
	emitter := &fakeEmitter{}

	o := New(store, surface, emitter, nil, Options{StallTimeout: time.Second})
	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if sum.Errored != 1 {
		t.Errorf("summary = %+v, want 1 error", sum)
	}
	if left, _ := store.Load(); len(left) != 0 {
		t.Errorf("failed item left in queue: %v", left)
	}
}

func TestSentinelClassifiesAsEmpty(t *testing.T) {
	store := newFakeStore("https://x/gone")
	surface := newFakeSurface()
	surface.yields("https://x/gone", extract.SentinelRecord("https://x/gone"))
	emitter := &fakeEmitter{}

	o := New(store, surface, emitter, nil, Options{StallTimeout: time.Second})
	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if sum.Empty != 1 || sum.Succeeded != 0 {
		t.Errorf("summary = %+v, sentinel must not count as success", sum)
	}

	// The artifact carries the sentinel row itself, not a generic placeholder.
	rows := emitter.calls()[0].rows
	if len(rows) != 1 || !rows[0].IsSentinel() {
		t.Errorf("sentinel artifact rows = %+v", rows)
	}
}

func TestEmptyResultGetsPlaceholderRow(t *testing.T) {
	store := newFakeStore("https://x/quiet")
	surface := newFakeSurface()
	surface.yields("https://x/quiet") // zero records
	emitter := &fakeEmitter{}

	o := New(store, surface, emitter, nil, Options{StallTimeout: time.Second})
	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if sum.Empty != 1 {
		t.Errorf("summary = %+v, want 1 empty", sum)
	}
	rows := emitter.calls()[0].rows
	if len(rows) != 1 || !strings.Contains(rows[0].Content, "No Content") {
		t.Errorf("empty artifact rows = %+v", rows)
	}
}

func TestSnapshotLoadFailureIsNotFatal(t *testing.T) {
	store := newFakeStore("https://x/a")
	// Call 1 is the loop-top reload, call 2 the post-removal reload for
	// the snapshot; only the latter fails. Call 3 ends the run normally.
	store.loadErrOn[2] = errors.New("store briefly unavailable")

	surface := newFakeSurface()
	surface.yields("https://x/a", record("https://x/a", "p1"))
	emitter := &fakeEmitter{}

	o := New(store, surface, emitter, nil, Options{StallTimeout: time.Second})
	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v, snapshot reload failure must not end the run", err)
	}

	if sum.Succeeded != 1 {
		t.Errorf("summary = %+v, want 1 success", sum)
	}
	if len(emitter.calls()) != 1 {
		t.Errorf("emitted %d artifacts, want 1", len(emitter.calls()))
	}
	if len(emitter.snapshots) != 0 {
		t.Errorf("snapshot written despite failed reload: %v", emitter.snapshots)
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	store := newFakeStore("https://x/a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := New(store, newFakeSurface(), &fakeEmitter{}, nil, Options{StallTimeout: time.Second})
	if _, err := o.Run(ctx); err == nil {
		t.Error("Run() with cancelled context should return an error")
	}
	if left, _ := store.Load(); len(left) != 1 {
		t.Errorf("cancelled run mutated the queue: %v", left)
	}
}

// End-to-end shape of the reference example: two items, two records for the
// first, a stall on the second, real CSV artifacts on disk.
func TestRunWithRealEmitter(t *testing.T) {
	dir := t.TempDir()
	emitter, err := artifact.NewEmitter(dir)
	if err != nil {
		t.Fatalf("NewEmitter() error: %v", err)
	}

	store := newFakeStore("https://x/a", "https://x/b")
	surface := newFakeSurface()
	surface.yields("https://x/a", record("https://x/a", "post one"), record("https://x/a", "post two"))
	surface.extractFn["https://x/b"] = func(ctx context.Context) ([]extract.Record, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	o := New(store, surface, emitter, nil, Options{StallTimeout: 30 * time.Millisecond})
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	readRows := func(name string) [][]string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		return rows
	}

	if rows := readRows("a.csv"); len(rows) != 3 {
		t.Errorf("a.csv has %d rows, want header + 2", len(rows))
	}
	bRows := readRows("b.csv")
	if len(bRows) != 2 || !strings.Contains(bRows[1][2], "Skipped") {
		t.Errorf("b.csv rows = %v, want one skipped row", bRows)
	}

	snapData, err := os.ReadFile(filepath.Join(dir, artifact.SnapshotFileName))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if strings.TrimSpace(string(snapData)) != "[]" {
		t.Errorf("final snapshot = %s, want []", snapData)
	}
}

func TestOutcomeKindString(t *testing.T) {
	kinds := map[OutcomeKind]string{
		OutcomeSuccess:       "success",
		OutcomeEmpty:         "empty",
		OutcomeEmptySentinel: "empty-sentinel",
		OutcomeStalled:       "stalled",
		OutcomeError:         "error",
	}
	for kind, want := range kinds {
		if got := fmt.Sprint(kind); got != want {
			t.Errorf("OutcomeKind(%d) = %q, want %q", kind, got, want)
		}
	}
}
