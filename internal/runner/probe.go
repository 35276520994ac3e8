package runner

import (
	"sync/atomic"
	"time"

	"github.com/dyluth/sortvis/pkg/cell"
)

// Last-action tags reported in Stats.
const (
	ActionNothing = "nothing"
	ActionRead    = "read"
	ActionWrite   = "write"
)

// counters are the live statistics hooks mutate during a run.
type counters struct {
	reads      atomic.Uint64
	writes     atomic.Uint64
	lastAction atomic.Value // string
}

func newCounters() *counters {
	c := &counters{}
	c.lastAction.Store(ActionNothing)
	return c
}

func (c *counters) reset() {
	c.reads.Store(0)
	c.writes.Store(0)
}

func (c *counters) action() string {
	return c.lastAction.Load().(string)
}

// probe is the per-run observer attached to every cell. It counts the access,
// tags the last action, sleeps the configured latency and then reports
// cancellation if the run token has been cleared meanwhile.
type probe struct {
	stats      *counters
	token      *cell.Token
	readDelay  time.Duration
	writeDelay time.Duration
}

func (p *probe) OnRead(int, int) error {
	p.stats.reads.Add(1)
	p.stats.lastAction.Store(ActionRead)
	pause(p.readDelay)
	return p.token.Check()
}

func (p *probe) OnWrite(int, int) error {
	p.stats.writes.Add(1)
	p.stats.lastAction.Store(ActionWrite)
	pause(p.writeDelay)
	return p.token.Check()
}

func pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
