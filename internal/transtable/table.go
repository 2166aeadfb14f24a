// Package transtable implements the Solver's transposition table: a
// fixed-size, open-addressed hash table mapping position keys to 8-bit
// values. It never rehashes and never chains -- a write always overwrites
// whatever previously occupied its bucket, making reads lossy under
// collision. The searcher relies on this only as an upper-bound cache, so a
// miss costs re-exploration but never correctness.
package transtable

import "github.com/rs/zerolog"

// emptySignature marks a bucket that has never been written. No legal
// Position key can reach this value (see package position.FromKey), so it
// never collides with a real signature the way 0 would (the empty board's
// key is legitimately 0).
const emptySignature = ^uint64(0)

type slot struct {
	signature uint64
	value     int8
}

// Table is a fixed-size transposition table, one Solver's worth of
// exploration memory.
type Table struct {
	slots []slot
	log   zerolog.Logger
}

// New allocates a table with room for capacity entries. capacity should be
// sized so that roughly twice the expected number of distinct positions
// explored fits, to keep collision rates low; it need not be prime (unlike
// the opening book's on-disk table, which is sized that way for a different
// reason -- see package book).
func New(capacity int) *Table {
	return NewWithLogger(capacity, zerolog.Nop())
}

// NewWithLogger is New with an explicit logger for reset diagnostics. Pass
// zerolog.Nop() (the New default) for silence.
func NewWithLogger(capacity int, log zerolog.Logger) *Table {
	if capacity <= 0 {
		capacity = 1
	}
	t := &Table{slots: make([]slot, capacity), log: log}
	t.Reset()
	return t
}

// Cap returns the table's fixed capacity.
func (t *Table) Cap() int {
	return len(t.slots)
}

// Put stores value under key, overwriting any prior occupant of the same
// bucket unconditionally.
func (t *Table) Put(key uint64, value int8) {
	t.slots[key%uint64(len(t.slots))] = slot{signature: key, value: value}
}

// Get returns (value, true) if the bucket for key currently holds key's own
// signature, or (0, false) otherwise (empty bucket or a different key's
// signature left behind by a collision).
func (t *Table) Get(key uint64) (int8, bool) {
	s := t.slots[key%uint64(len(t.slots))]
	if s.signature != key {
		return 0, false
	}
	return s.value, true
}

// Reset clears every slot back to empty.
func (t *Table) Reset() {
	for i := range t.slots {
		t.slots[i] = slot{signature: emptySignature}
	}
	t.log.Debug().Int("capacity", len(t.slots)).Msg("transposition table reset")
}
