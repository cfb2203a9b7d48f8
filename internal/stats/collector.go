package stats

import (
	"sync"
	"time"

	"github.com/axiomhq/hyperloglog"

	"tokenScope/internal/model"
)

// Collector tracks feed-level counters plus a sketch of every distinct token
// address seen over the process lifetime. The sketch makes "how many tokens
// has the feed ever shown" cheap even when the upstream list churns.
type Collector struct {
	mu        sync.Mutex
	cycles    uint64
	lastCount int
	lastCycle time.Time
	sketch    *hyperloglog.Sketch
}

func NewCollector() *Collector {
	return &Collector{sketch: hyperloglog.New14()}
}

// RecordCycle notes one completed feed refresh.
func (c *Collector) RecordCycle(tokens []model.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycles++
	c.lastCount = len(tokens)
	c.lastCycle = time.Now()
	for i := range tokens {
		c.sketch.Insert([]byte(tokens[i].Key()))
	}
}

// Snapshot is a point-in-time view of the collector.
type Snapshot struct {
	Cycles         uint64    `json:"cycles"`
	LastTokenCount int       `json:"last_token_count"`
	LastCycleAt    time.Time `json:"last_cycle_at"`
	DistinctTokens uint64    `json:"distinct_tokens"`
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Cycles:         c.cycles,
		LastTokenCount: c.lastCount,
		LastCycleAt:    c.lastCycle,
		DistinctTokens: c.sketch.Estimate(),
	}
}
