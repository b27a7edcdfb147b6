package predict

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultNamePrefix prefixes generated task names.
const DefaultNamePrefix = "predict"

// NameSource hands out task names. Implementations must never return the
// same name twice and must be safe for concurrent use.
type NameSource interface {
	Next() string
}

// Sequence names tasks "<prefix>-0", "<prefix>-1", ... Each Sequence has
// its own counter.
type Sequence struct {
	prefix string
	n      atomic.Uint64
}

// NewSequence creates a counter starting at zero.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next name.
func (s *Sequence) Next() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.n.Add(1)-1)
}

// UUIDNames names tasks "<prefix>-<uuid>", unique across processes.
type UUIDNames struct {
	Prefix string
}

// Next returns a fresh name.
func (u UUIDNames) Next() string {
	return u.Prefix + "-" + uuid.NewString()
}
