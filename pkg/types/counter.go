package types

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Counter is an integer tally keyed by string that iterates in first-seen
// order. Dominant-type and specialty selection break ties by first-seen
// order, so the plain map's randomized iteration cannot be used here.
type Counter struct {
	m *orderedmap.OrderedMap[string, int]
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{m: orderedmap.New[string, int]()}
}

// Inc adds delta to key's tally, inserting the key on first touch.
func (c *Counter) Inc(key string, delta int) {
	if v, ok := c.m.Get(key); ok {
		c.m.Set(key, v+delta)
		return
	}
	c.m.Set(key, delta)
}

// Get returns the tally for key, zero if absent.
func (c *Counter) Get(key string) int {
	v, _ := c.m.Get(key)
	return v
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return c.m.Len()
}

// Keys returns the keys in first-seen order.
func (c *Counter) Keys() []string {
	keys := make([]string, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every key/tally pair in first-seen order.
func (c *Counter) Each(fn func(key string, count int)) {
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Max returns the key with the highest tally. When several keys share the
// maximum, the first-seen one wins. ok is false for an empty counter.
func (c *Counter) Max() (key string, count int, ok bool) {
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		if !ok || pair.Value > count {
			key, count, ok = pair.Key, pair.Value, true
		}
	}
	return key, count, ok
}

// ToMap copies the counter into a plain map. Order is lost; use only where
// ordering does not matter (e.g. persisted summary documents).
func (c *Counter) ToMap() map[string]int {
	out := make(map[string]int, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// MarshalJSON encodes the counter as a JSON object in first-seen key order.
func (c *Counter) MarshalJSON() ([]byte, error) {
	return c.m.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, preserving its key order.
func (c *Counter) UnmarshalJSON(data []byte) error {
	if c.m == nil {
		c.m = orderedmap.New[string, int]()
	}
	return c.m.UnmarshalJSON(data)
}
