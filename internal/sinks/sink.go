package sinks

import (
	"sync"
	"sync/atomic"

	"github.com/nerrad567/nvx-fleet/internal/events"
)

// Logger defines the logging interface used by sinks.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func orNoop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}

// Sink consumes event records.
type Sink interface {
	Handle(rec events.Record)
}

// DefaultQueueSize is used when NewAsync is given a non-positive size.
const DefaultQueueSize = 256

// Async runs a Sink on its own goroutine behind a bounded queue.
type Async struct {
	name   string
	next   Sink
	logger Logger
	queue  chan events.Record

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
	done    chan struct{}
}

// NewAsync starts a worker that feeds next from a queue of size records.
func NewAsync(name string, next Sink, size int, logger Logger) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	a := &Async{
		name:   name,
		next:   next,
		logger: orNoop(logger),
		queue:  make(chan events.Record, size),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for rec := range a.queue {
		a.deliver(rec)
	}
}

func (a *Async) deliver(rec events.Record) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("event sink panic recovered", "sink", a.name, "record", rec.ID, "panic", r)
		}
	}()
	a.next.Handle(rec)
}

// Handle enqueues rec without blocking. Records arriving while the queue
// is full or after Close are dropped.
func (a *Async) Handle(rec events.Record) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}

	select {
	case a.queue <- rec:
	default:
		n := a.dropped.Add(1)
		a.logger.Warn("event sink queue full, dropping record",
			"sink", a.name, "endpoint", rec.SourceID, "name", rec.Name, "dropped_total", n)
	}
}

// Name returns the label used in log lines.
func (a *Async) Name() string {
	return a.name
}

// Dropped returns how many records were discarded on a full queue.
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

// Close stops accepting records and waits for the queue to drain.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()
	<-a.done
}
