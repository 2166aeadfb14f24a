// Package book implements the Solver's opening book: an immutable on-disk
// table mapping the canonical key of a position with exactly Depth() moves
// played to its exact game-theoretic score. The table is built once (either
// by Build, for synthetic/test books, or by an offline book-generation tool
// outside this module's scope) and is read-only for the lifetime of the
// process -- no mutex guards it, unlike a book that is mutated at runtime by
// self-play learning.
package book

import (
	"encoding/binary"
	"io"
	"math/bits"
	"os"

	"github.com/rs/zerolog"

	"github.com/YKhan142008/c4-solver/internal/position"
)

const (
	headerSize       = 7
	valueSizeBits    = 8
	defaultKeyBytes  = 4 // PARTIAL_KEY_BYTES: 32 bits of residue per slot
	loadFactorTarget = 2 // capacity is sized to ~2x the entry count

	// maxLog2Capacity bounds the LOG2_CAPACITY header field ReadFrom will
	// honor. No book this module builds needs anywhere near 2^24 slots
	// (the deepest book spec.md describes is depth 8); without this
	// check a corrupted or hostile file could claim an arbitrarily large
	// LOG2_CAPACITY and force a multi-gigabyte allocation before any
	// other validation runs.
	maxLog2Capacity = 24
)

// OpeningBook is an immutable depth-D lookup table of exact scores, keyed by
// canonical Position key. It is safe for concurrent use by any number of
// readers: nothing in it is ever mutated after Load or Build returns.
type OpeningBook struct {
	depth        int
	width        int
	height       int
	keyBytes     int
	log2Capacity int
	capacity     int
	residues     []uint64
	values       []int8
	log          zerolog.Logger
}

// Depth is the fixed move-count this book was indexed at.
func (b *OpeningBook) Depth() int { return b.depth }

// Width is the board width this book was built for.
func (b *OpeningBook) Width() int { return b.width }

// Height is the board height this book was built for.
func (b *OpeningBook) Height() int { return b.height }

// Stats reports (entries, capacity). entries is a best-effort count of
// occupied slots: the on-disk format reserves no dedicated occupancy bit
// (see §6 of the format description), so a slot whose residue and value are
// both zero is indistinguishable from one that was never written. Genuine
// zero-residue, zero-score entries are rare enough in practice that this
// undercounts by at most a handful of slots.
func (b *OpeningBook) Stats() (entries, capacity int) {
	for i := range b.residues {
		if b.residues[i] != 0 || b.values[i] != 0 {
			entries++
		}
	}
	return entries, b.capacity
}

func (b *OpeningBook) keyMask() uint64 {
	width := uint(b.keyBytes) * 8
	if width >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<width - 1
}

// Lookup returns (score, true) if p has exactly Depth() moves played and its
// canonical key is present in the book, or (0, false) otherwise.
func (b *OpeningBook) Lookup(p *position.Position) (int8, bool) {
	if p.Moves() != b.depth {
		return 0, false
	}
	key := p.CanonicalKey()
	idx := key % uint64(b.capacity)
	if b.residues[idx] != key&b.keyMask() {
		return 0, false
	}
	return b.values[idx], true
}

// Build materializes an in-memory OpeningBook from a set of canonical-key to
// score pairs, all assumed to have exactly depth moves played. This lets
// tests exercise the book format and lookup semantics
// without shipping a true depth-8 book (generating one is an offline,
// compute-heavy process outside this module).
func Build(positions map[uint64]int8, depth int) *OpeningBook {
	log2Capacity := log2Ceil(len(positions)*loadFactorTarget + 1)
	capacity := primeAtLeast(1 << log2Capacity)
	b := &OpeningBook{
		depth:        depth,
		width:        position.W,
		height:       position.H,
		keyBytes:     defaultKeyBytes,
		log2Capacity: log2Capacity,
		capacity:     capacity,
		residues:     make([]uint64, capacity),
		values:       make([]int8, capacity),
		log:          zerolog.Nop(),
	}
	mask := b.keyMask()
	for key, score := range positions {
		idx := key % uint64(capacity)
		b.residues[idx] = key & mask
		b.values[idx] = score
	}
	return b
}

// WriteTo serializes the book in the on-disk format: a 7-byte header
// (WIDTH, HEIGHT, MAX_STORED_POS, KEY_SIZE_BITS, VALUE_SIZE_BITS,
// LOG2_CAPACITY, PARTIAL_KEY_BYTES), followed by capacity little-endian key
// residues, followed by capacity signed-byte scores.
func (b *OpeningBook) WriteTo(w io.Writer) (int64, error) {
	header := [headerSize]byte{
		byte(b.width),
		byte(b.height),
		byte(b.depth),
		byte(b.keyBytes * 8),
		valueSizeBits,
		byte(b.log2Capacity),
		byte(b.keyBytes),
	}

	var n int64
	nn, err := w.Write(header[:])
	n += int64(nn)
	if err != nil {
		return n, err
	}

	residueBuf := make([]byte, b.keyBytes)
	for _, residue := range b.residues {
		binary.LittleEndian.PutUint32(residueBuf, uint32(residue))
		nn, err := w.Write(residueBuf)
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}

	valueBuf := make([]byte, len(b.values))
	for i, v := range b.values {
		valueBuf[i] = byte(v)
	}
	nn, err = w.Write(valueBuf)
	n += int64(nn)
	return n, err
}

// ReadFrom deserializes a book from r, validating the header against this
// module's fixed board dimensions and value width. Returns *CorruptBook if
// any header field mismatches.
func (b *OpeningBook) ReadFrom(r io.Reader) (int64, error) {
	var header [headerSize]byte
	nRead, err := io.ReadFull(r, header[:])
	n := int64(nRead)
	if err != nil {
		return n, err
	}

	width, height, depth := int(header[0]), int(header[1]), int(header[2])
	keySizeBits, valBits, log2Capacity, keyBytes := header[3], header[4], header[5], header[6]

	if width != position.W {
		return n, &CorruptBook{Field: "WIDTH", Got: header[0], Want: byte(position.W)}
	}
	if height != position.H {
		return n, &CorruptBook{Field: "HEIGHT", Got: header[1], Want: byte(position.H)}
	}
	if valBits != valueSizeBits {
		return n, &CorruptBook{Field: "VALUE_SIZE_BITS", Got: valBits, Want: valueSizeBits}
	}
	if int(keyBytes)*8 != int(keySizeBits) {
		return n, &CorruptBook{Field: "KEY_SIZE_BITS", Got: keySizeBits, Want: keyBytes * 8}
	}
	if keyBytes != defaultKeyBytes {
		return n, &CorruptBook{Field: "PARTIAL_KEY_BYTES", Got: keyBytes, Want: defaultKeyBytes}
	}
	if log2Capacity > maxLog2Capacity {
		return n, &CorruptBook{Field: "LOG2_CAPACITY", Got: log2Capacity, Want: maxLog2Capacity}
	}

	capacity := primeAtLeast(1 << log2Capacity)

	b.log2Capacity = int(log2Capacity)
	residues := make([]uint64, capacity)
	residueBuf := make([]byte, keyBytes)
	for i := range residues {
		nn, err := io.ReadFull(r, residueBuf)
		n += int64(nn)
		if err != nil {
			return n, err
		}
		residues[i] = uint64(binary.LittleEndian.Uint32(residueBuf))
	}

	valueBuf := make([]byte, capacity)
	nn, err := io.ReadFull(r, valueBuf)
	n += int64(nn)
	if err != nil {
		return n, err
	}
	values := make([]int8, capacity)
	for i, byt := range valueBuf {
		values[i] = int8(byt)
	}

	b.width, b.height, b.depth = width, height, depth
	b.keyBytes = int(keyBytes)
	b.capacity = capacity
	b.residues = residues
	b.values = values
	b.log.Debug().Int("depth", depth).Int("capacity", capacity).Msg("opening book loaded")
	return n, nil
}

// Save writes the book to path in the on-disk format.
func (b *OpeningBook) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = b.WriteTo(f)
	return err
}

// Load reads an opening book previously written by Save/WriteTo. Fails with
// *CorruptBook if a header field mismatches this module's board dimensions.
func Load(path string) (*OpeningBook, error) {
	return LoadWithLogger(path, zerolog.Nop())
}

// LoadWithLogger is Load with an explicit logger for load diagnostics.
func LoadWithLogger(path string, log zerolog.Logger) (*OpeningBook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b := &OpeningBook{log: log}
	if _, err := b.ReadFrom(f); err != nil {
		return nil, err
	}
	return b, nil
}

// log2Ceil returns the smallest k such that 1<<k >= n, n >= 1. This is the
// LOG2_CAPACITY header field: capacity is always derived from it as
// primeAtLeast(1<<log2Ceil(...)), so storing log2Ceil's result (not a value
// re-derived from the already-rounded-up prime capacity) is what lets
// WriteTo/ReadFrom reconstruct an identical capacity.
func log2Ceil(n int) int {
	if n < 2 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// primeAtLeast returns the smallest prime p >= n, n >= 2. Capacities are
// sized to a prime so that key mod capacity distributes residues uniformly
// (spec.md §9, "OpeningBook capacity as prime").
func primeAtLeast(n int) int {
	if n < 2 {
		n = 2
	}
	for !isPrime(n) {
		n++
	}
	return n
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}
