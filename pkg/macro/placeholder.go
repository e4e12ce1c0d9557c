package macro

import (
	"strconv"
	"sync/atomic"
)

// Placeholder tokens use letters and digits only so markdown renderers leave
// them alone. The suffix keeps "X1END" from matching inside "X10END".
const (
	DefaultPlaceholderPrefix = "MACROED"
	DefaultPlaceholderSuffix = "END"
)

// Placeholders hands out placeholder tokens. Implementations must never
// return the same token twice and must be safe for concurrent use.
type Placeholders interface {
	Next() string
}

// Counter is a Placeholders backed by an atomic counter.
type Counter struct {
	Prefix string
	Suffix string
	n      atomic.Uint64
}

// NewCounter returns a counter producing prefix<n>suffix tokens starting at 0.
func NewCounter(prefix, suffix string) *Counter {
	return &Counter{Prefix: prefix, Suffix: suffix}
}

// Next returns the next token.
func (c *Counter) Next() string {
	id := c.n.Add(1) - 1
	return c.Prefix + strconv.FormatUint(id, 10) + c.Suffix
}

// DefaultPlaceholders is shared by every parser that does not bring its own,
// so placeholders stay unique across the whole process.
var DefaultPlaceholders Placeholders = NewCounter(DefaultPlaceholderPrefix, DefaultPlaceholderSuffix)

