// Package metrics keeps in-memory timing statistics for pipeline stages and
// boundary calls.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Operation names for the collector.
const (
	OpParse        = "parse"
	OpProfile      = "profile"
	OpGraph        = "graph"
	OpSuggest      = "suggest"
	OpNormalize    = "normalize"
	OpSerendipity  = "serendipity"
	OpOpportunity  = "opportunity"
	OpCrossConnect = "cross_connect"
	OpLLMEnrich    = "llm_enrich"
	OpDBQuery      = "db_query"
)

// toolOpPrefix namespaces MCP tool calls.
const toolOpPrefix = "tool:"

// ToolOp returns the operation name for an MCP tool call.
func ToolOp(tool string) string {
	return toolOpPrefix + tool
}

// tokenOps report token usage in snapshots.
var tokenOps = map[string]bool{OpLLMEnrich: true}

type opStats struct {
	count     int64
	total     time.Duration
	min, max  time.Duration
	tokensIn  int64
	tokensOut int64
}

// OperationSnapshot is the computed view of one operation.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"totalTimeMs"`
	AvgTimeMs   float64 `json:"avgTimeMs"`
	MinTimeMs   int64   `json:"minTimeMs"`
	MaxTimeMs   int64   `json:"maxTimeMs"`

	// Only set for LLM operations that reported usage.
	InputTokens  *int64 `json:"inputTokens,omitempty"`
	OutputTokens *int64 `json:"outputTokens,omitempty"`
}

// Snapshot is the collector state at a point in time.
type Snapshot struct {
	UptimeSeconds float64                       `json:"uptimeSeconds"`
	Operations    map[string]*OperationSnapshot `json:"operations"`
}

// Op returns the snapshot for op, or nil when it never ran.
func (s Snapshot) Op(op string) *OperationSnapshot {
	return s.Operations[op]
}

// Names returns the recorded operation names, sorted.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.Operations))
	for name := range s.Operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collector aggregates timings. All methods are safe for concurrent use and
// are no-ops on a nil *Collector, so components can take an optional one.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*opStats
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*opStats),
	}
}

// caller holds the write lock
func (c *Collector) stats(op string) *opStats {
	s, ok := c.ops[op]
	if !ok {
		s = &opStats{min: time.Duration(math.MaxInt64)}
		c.ops[op] = s
	}
	return s
}

// RecordTiming records one run of op.
func (c *Collector) RecordTiming(op string, d time.Duration) {
	c.RecordLLMUsage(op, d, 0, 0)
}

// RecordLLMUsage records one run of op along with its token usage.
func (c *Collector) RecordLLMUsage(op string, d time.Duration, inputTokens, outputTokens int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats(op)
	s.count++
	s.total += d
	s.min = min(s.min, d)
	s.max = max(s.max, d)
	s.tokensIn += inputTokens
	s.tokensOut += outputTokens
}

// Time starts a timer for op. Call the returned func when the op finishes.
//
//	defer mc.Time(metrics.OpParse)()
func (c *Collector) Time(op string) func() {
	start := time.Now()
	return func() { c.RecordTiming(op, time.Since(start)) }
}

// Snapshot returns a point-in-time copy of all metrics.
func (c *Collector) Snapshot() Snapshot {
	snap := Snapshot{Operations: map[string]*OperationSnapshot{}}
	if c == nil {
		return snap
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap.UptimeSeconds = time.Since(c.startTime).Seconds()
	for name, s := range c.ops {
		snap.Operations[name] = s.snapshot(tokenOps[name])
	}
	return snap
}

func (s *opStats) snapshot(withTokens bool) *OperationSnapshot {
	out := &OperationSnapshot{
		Count:       s.count,
		TotalTimeMs: s.total.Milliseconds(),
		AvgTimeMs:   float64(s.total.Milliseconds()) / float64(s.count),
		MinTimeMs:   s.min.Milliseconds(),
		MaxTimeMs:   s.max.Milliseconds(),
	}
	if withTokens && (s.tokensIn > 0 || s.tokensOut > 0) {
		in, outTokens := s.tokensIn, s.tokensOut
		out.InputTokens = &in
		out.OutputTokens = &outTokens
	}
	return out
}
