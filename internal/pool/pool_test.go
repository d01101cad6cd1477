package pool_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"lectern/internal/capture"
	"lectern/internal/config"
	"lectern/internal/logging"
	"lectern/internal/manifest"
	"lectern/internal/pool"
	"lectern/internal/queue"
	"lectern/internal/segments"
	"lectern/internal/session"
	"lectern/internal/testsupport"
)

type fakeFactory struct {
	mu       sync.Mutex
	created  int
	closed   int
	run      func(ctx context.Context, req capture.Request, sink capture.SegmentSink) (capture.Result, error)
	newError error
}

func (f *fakeFactory) NewContext(_ context.Context, creds session.Credentials) (capture.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.newError != nil {
		return nil, f.newError
	}
	if creds.Empty() {
		return nil, fmt.Errorf("factory given empty credentials")
	}
	f.created++
	return &fakeContext{factory: f}, nil
}

func (f *fakeFactory) counts() (created, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, f.closed
}

type fakeContext struct {
	factory *fakeFactory
}

func (c *fakeContext) Run(ctx context.Context, req capture.Request, sink capture.SegmentSink) (capture.Result, error) {
	return c.factory.run(ctx, req, sink)
}

func (c *fakeContext) Close() error {
	c.factory.mu.Lock()
	defer c.factory.mu.Unlock()
	c.factory.closed++
	return nil
}

func testCredentials() session.Credentials {
	return session.Credentials{
		Origin:  "https://learn.example.com",
		Cookies: []session.Cookie{{Name: "sid", Value: "abc"}},
	}
}

func entriesForJobs(n int) []manifest.Entry {
	entries := make([]manifest.Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, manifest.Entry{
			SectionLabel: "Section 1",
			Title:        fmt.Sprintf("Lecture %02d", i+1),
			LectureID:    fmt.Sprintf("lec-%03d", i+1),
			SourceURL:    fmt.Sprintf("https://learn.example.com/lec-%03d", i+1),
		})
	}
	return entries
}

func newTestPool(t *testing.T, factory capture.ContextFactory, jobs int) (*pool.Pool, *queue.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)
	if _, err := store.Build(context.Background(), entriesForJobs(jobs)); err != nil {
		t.Fatalf("build queue: %v", err)
	}
	segStore := segments.NewStore(cfg.Paths.SegmentDir)
	return pool.New(cfg, store, segStore, factory, logging.NewNop()), store, cfg
}

// capturingRun emits one synthetic fragment per lecture and reports the
// lecture id as the discovered video id.
func capturingRun(ctx context.Context, req capture.Request, sink capture.SegmentSink) (capture.Result, error) {
	body := fmt.Sprintf("WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nTranscript of %s.\n", req.Title)
	if err := sink.Put(req.LectureID, "seg-001.vtt", []byte(body)); err != nil {
		return capture.Result{}, err
	}
	return capture.Result{VideoID: req.LectureID, EndReason: capture.EndPlayback}, nil
}

func TestRunProcessesEveryJobExactlyOnce(t *testing.T) {
	factory := &fakeFactory{run: capturingRun}
	p, store, _ := newTestPool(t, factory, 9)

	summary, err := p.Run(context.Background(), testCredentials(), 3)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Total != 9 || summary.Succeeded != 9 || summary.Failed != 0 || summary.Remaining != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	counts, err := store.Summarize(context.Background())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if counts.Completed != 9 {
		t.Fatalf("expected all jobs completed, got %+v", counts)
	}
}

func TestRunOneJobManyWorkers(t *testing.T) {
	var runs sync.Map
	factory := &fakeFactory{run: func(ctx context.Context, req capture.Request, sink capture.SegmentSink) (capture.Result, error) {
		count, _ := runs.LoadOrStore(req.LectureID, new(int))
		*count.(*int)++
		return capturingRun(ctx, req, sink)
	}}
	p, _, _ := newTestPool(t, factory, 1)

	summary, err := p.Run(context.Background(), testCredentials(), 3)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	count, ok := runs.Load("lec-001")
	if !ok || *count.(*int) != 1 {
		t.Fatalf("expected the single job processed exactly once")
	}

	// Every worker still acquired and released a context, including the two
	// that drained nothing.
	created, closed := factory.counts()
	if created != 3 || closed != 3 {
		t.Fatalf("expected 3 contexts created and closed, got %d/%d", created, closed)
	}
}

func TestRunPassesDiscoveryWindowToRunner(t *testing.T) {
	var mu sync.Mutex
	var windows []time.Duration
	factory := &fakeFactory{run: func(ctx context.Context, req capture.Request, sink capture.SegmentSink) (capture.Result, error) {
		mu.Lock()
		windows = append(windows, req.DiscoveryTimeout)
		mu.Unlock()
		return capturingRun(ctx, req, sink)
	}}
	p, _, cfg := newTestPool(t, factory, 3)

	if _, err := p.Run(context.Background(), testCredentials(), 1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := time.Duration(cfg.Workers.DiscoveryTimeoutSeconds) * time.Second
	if want <= 0 {
		t.Fatalf("config must carry a positive discovery window, got %v", want)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 runner invocations, got %d", len(windows))
	}
	for _, window := range windows {
		if window != want {
			t.Fatalf("runner received discovery window %v, want %v", window, want)
		}
	}
}

func TestRunContinuesAfterJobFailure(t *testing.T) {
	factory := &fakeFactory{run: func(ctx context.Context, req capture.Request, sink capture.SegmentSink) (capture.Result, error) {
		if req.LectureID == "lec-002" {
			return capture.Result{}, fmt.Errorf("player crashed")
		}
		return capturingRun(ctx, req, sink)
	}}
	p, _, _ := newTestPool(t, factory, 4)

	summary, err := p.Run(context.Background(), testCredentials(), 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Succeeded != 3 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.FailedJobs) != 1 {
		t.Fatalf("expected one failed job, got %+v", summary.FailedJobs)
	}
	failed := summary.FailedJobs[0]
	if failed.LectureID != "lec-002" || failed.SectionLabel != "Section 1" || failed.Title == "" {
		t.Fatalf("failure identity incomplete: %+v", failed)
	}
	if !strings.Contains(failed.Reason, "player crashed") {
		t.Fatalf("failure reason lost: %q", failed.Reason)
	}
}

func TestRunWritesTranscripts(t *testing.T) {
	factory := &fakeFactory{run: capturingRun}
	p, _, cfg := newTestPool(t, factory, 2)

	if _, err := p.Run(context.Background(), testCredentials(), 2); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	path := filepath.Join(cfg.Paths.TranscriptDir, "Section 1", "Lecture 01.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("transcript missing: %v", err)
	}
	if string(data) != "Transcript of Lecture 01.\n" {
		t.Fatalf("unexpected transcript content %q", data)
	}
}

func TestRunNoVideoIDMarksJobFailed(t *testing.T) {
	factory := &fakeFactory{run: func(ctx context.Context, req capture.Request, sink capture.SegmentSink) (capture.Result, error) {
		return capture.Result{VideoID: "", EndReason: capture.EndPlayback}, nil
	}}
	p, _, _ := newTestPool(t, factory, 1)

	summary, err := p.Run(context.Background(), testCredentials(), 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected job failed on missing video id, got %+v", summary)
	}
	if !strings.Contains(summary.FailedJobs[0].Reason, "no video id") {
		t.Fatalf("unexpected reason %q", summary.FailedJobs[0].Reason)
	}
}

func TestRunNoSegmentsMarksJobFailed(t *testing.T) {
	factory := &fakeFactory{run: func(ctx context.Context, req capture.Request, sink capture.SegmentSink) (capture.Result, error) {
		// Playback "finished" but the capture mechanism delivered nothing.
		return capture.Result{VideoID: req.LectureID, EndReason: capture.EndPlayback}, nil
	}}
	p, _, _ := newTestPool(t, factory, 1)

	summary, err := p.Run(context.Background(), testCredentials(), 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failed != 1 || !strings.Contains(summary.FailedJobs[0].Reason, "no segments") {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunTimeoutOutcomeStillAssembles(t *testing.T) {
	factory := &fakeFactory{run: func(ctx context.Context, req capture.Request, sink capture.SegmentSink) (capture.Result, error) {
		body := "00:00:01.000 --> 00:00:02.000\nPartial capture.\n"
		if err := sink.Put(req.LectureID, "seg-001.vtt", []byte(body)); err != nil {
			return capture.Result{}, err
		}
		return capture.Result{VideoID: req.LectureID, EndReason: capture.EndTimeout}, nil
	}}
	p, _, _ := newTestPool(t, factory, 1)

	summary, err := p.Run(context.Background(), testCredentials(), 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("expected timeout job to assemble partial capture, got %+v", summary)
	}
}

func TestRunRejectsBadInputs(t *testing.T) {
	factory := &fakeFactory{run: capturingRun}
	p, _, _ := newTestPool(t, factory, 1)

	if _, err := p.Run(context.Background(), session.Credentials{}, 1); err == nil {
		t.Fatal("expected error for empty credentials")
	}
	if _, err := p.Run(context.Background(), testCredentials(), 0); err == nil {
		t.Fatal("expected error for zero concurrency")
	}
}

func TestRunReleasesContextsOnPanic(t *testing.T) {
	factory := &fakeFactory{run: func(ctx context.Context, req capture.Request, sink capture.SegmentSink) (capture.Result, error) {
		panic("player exploded")
	}}
	p, _, _ := newTestPool(t, factory, 2)

	summary, err := p.Run(context.Background(), testCredentials(), 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failed != 2 {
		t.Fatalf("expected panicking jobs recorded as failed, got %+v", summary)
	}
	created, closed := factory.counts()
	if created != closed {
		t.Fatalf("context leak: created %d, closed %d", created, closed)
	}
}
