package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type jobKind string

const (
	jobKindQuery     jobKind = "query"
	jobKindUpload    jobKind = "upload"
	jobKindAudio     jobKind = "audio"
	jobKindTechStack jobKind = "techstack"
)

type jobStatus string

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
	jobStatusCanceled  jobStatus = "canceled"
)

type jobSnapshot struct {
	ID        string
	Kind      jobKind
	Status    jobStatus
	StartedAt time.Time
	Duration  time.Duration
	Err       string
}

// jobSignalMsg announces that a job started.
type jobSignalMsg struct {
	Snapshot jobSnapshot
}

// jobResultEnvelope carries the finished job and the message its runner
// produced.
type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs blocking session calls off the event loop. Each job gets its own
// context so a clear can abort requests that are still in flight.
type jobBus struct {
	seq atomic.Int64
	ctx context.Context
	log *zap.Logger

	mu      sync.Mutex
	running map[string]runningJob
}

type runningJob struct {
	kind   jobKind
	ctx    context.Context
	cancel context.CancelFunc
}

func newJobBus(ctx context.Context, logger *zap.Logger) *jobBus {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jobBus{ctx: ctx, log: logger.Named("jobs"), running: map[string]runningJob{}}
}

// Start registers a job and returns a command that first reports the start and
// then runs it.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := fmt.Sprintf("%s-%d", kind, b.seq.Add(1))
	jobCtx, cancel := context.WithCancel(b.ctx)
	b.mu.Lock()
	b.running[id] = runningJob{kind: kind, ctx: jobCtx, cancel: cancel}
	b.mu.Unlock()

	started := time.Now()
	announce := func() tea.Msg {
		return jobSignalMsg{Snapshot: jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}}
	}
	return tea.Sequence(announce, b.run(id, kind, started, runner))
}

// Cancel aborts every running job of the given kinds and returns how many were
// signalled.
func (b *jobBus) Cancel(kinds ...jobKind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, job := range b.running {
		for _, kind := range kinds {
			if job.kind == kind {
				job.cancel()
				n++
				break
			}
		}
	}
	return n
}

func (b *jobBus) run(id string, kind jobKind, started time.Time, runner jobRunner) tea.Cmd {
	return func() tea.Msg {
		ctx, release := b.acquire(id)
		defer release()

		payload, err := runner(ctx)
		snapshot := jobSnapshot{ID: id, Kind: kind, StartedAt: started, Duration: time.Since(started)}
		switch {
		case err == nil:
			snapshot.Status = jobStatusSucceeded
		case errors.Is(err, context.Canceled) || ctx.Err() != nil:
			snapshot.Status = jobStatusCanceled
			snapshot.Err = err.Error()
		default:
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		}
		b.log.Info("job finished",
			zap.String("id", id),
			zap.String("kind", string(kind)),
			zap.String("status", string(snapshot.Status)),
			zap.Duration("duration", snapshot.Duration),
			zap.Error(err),
		)
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}
}

// acquire returns the job's context, or the bus context for jobs that were
// never registered, plus a release func that drops the registration.
func (b *jobBus) acquire(id string) (context.Context, func()) {
	b.mu.Lock()
	job, ok := b.running[id]
	b.mu.Unlock()
	if !ok {
		return b.ctx, func() {}
	}
	return job.ctx, func() {
		b.mu.Lock()
		delete(b.running, id)
		b.mu.Unlock()
		job.cancel()
	}
}
