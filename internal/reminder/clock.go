package reminder

import (
	"context"
	"sync"
	"time"
)

// DefaultScanInterval is intentionally short so reminders are observable
// moments after a medication becomes due.
const DefaultScanInterval = 10 * time.Second

// Clock drives the scanner on a fixed period. It owns a single background
// goroutine started by Start and stopped by Stop; ticks and direct
// RunOnce calls are serialized so overlapping cycles cannot interleave
// store writes. Tests call RunOnce instead of waiting on real time.
type Clock struct {
	interval time.Duration
	scanner  *Scanner

	runMu   sync.Mutex // serializes scan cycles
	stateMu sync.Mutex // guards started/stopped
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

func NewClock(interval time.Duration, scanner *Scanner) *Clock {
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	return &Clock{
		interval: interval,
		scanner:  scanner,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker goroutine. Subsequent calls are no-ops.
func (c *Clock) Start() {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.started {
		return
	}
	c.started = true
	go c.run()
}

func (c *Clock) run() {
	defer close(c.done)
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.RunOnce(context.Background())
		}
	}
}

// RunOnce executes a single scan cycle at the current wall-clock time and
// returns the events that were fanned out.
func (c *Clock) RunOnce(ctx context.Context) []DueEvent {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	return c.scanner.Scan(ctx, time.Now().UTC())
}

// Stop halts the ticker and waits for an in-flight cycle to finish. Safe
// to call more than once; a Clock that was never started stops trivially.
func (c *Clock) Stop() {
	c.stateMu.Lock()
	if c.stopped {
		c.stateMu.Unlock()
		return
	}
	c.stopped = true
	started := c.started
	close(c.stop)
	c.stateMu.Unlock()
	if started {
		<-c.done
	}
}
