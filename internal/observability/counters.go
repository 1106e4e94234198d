package observability

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Counters accumulates named integer counts between flushes.
// All methods are safe for concurrent use.
type Counters struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewCounters creates an empty Counters.
func NewCounters() *Counters {
	return &Counters{values: make(map[string]int64)}
}

// Add increases name by n.
func (c *Counters) Add(name string, n int64) {
	if n == 0 {
		return
	}
	c.mu.Lock()
	c.values[name] += n
	c.mu.Unlock()
}

// Get returns the current value of name.
func (c *Counters) Get(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[name]
}

// Flush logs every counter as one Info entry with msg and resets them.
// Nothing is logged when all counters are zero.
//
// Postcondition: Every counter is zero.
func (c *Counters) Flush(logger *zap.Logger, msg string, extra ...zap.Field) {
	c.mu.Lock()
	names := make([]string, 0, len(c.values))
	for k := range c.values {
		names = append(names, k)
	}
	sort.Strings(names)
	fields := make([]zap.Field, 0, len(names)+len(extra))
	for _, k := range names {
		fields = append(fields, zap.Int64(k, c.values[k]))
	}
	c.values = make(map[string]int64)
	c.mu.Unlock()

	if len(names) == 0 {
		return
	}
	logger.Info(msg, append(fields, extra...)...)
}
