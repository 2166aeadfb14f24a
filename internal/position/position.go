// Package position implements the bitboard representation of a partial
// Connect Four game: move generation, legality, threat masks, terminal
// detection and the canonical keys used by the transposition table and
// opening book.
//
// The standard 6x7 Connect Four board is represented unambiguously using 49
// bits in the following bit order:
//
// ```comment
//   6 13 20 27 34 41 48
//  ---------------------
// | 5 12 19 26 33 40 47 |
// | 4 11 18 25 32 39 46 |
// | 3 10 17 24 31 38 45 |
// | 2  9 16 23 30 37 44 |
// | 1  8 15 22 29 36 43 |
// | 0  7 14 21 28 35 42 |
//  ---------------------
//```
//
// The extra row of bits at the top of each column identifies full columns
// and prevents bits from overflowing into the next column during the
// shift-and-AND alignment tests. Positions are stored as two uint64 values:
// a mask of the cells occupied by the side to move (Board), and a mask of
// all occupied cells (Mask).
package position

import (
	"fmt"
	"math/bits"
	"strings"
)

// Board dimensions. Fixed: the opening book format and the hard-coded shift
// constants below are only correct for 7x6.
const (
	W         int = 7
	H         int = 6
	BoardSize int = W * H
	Centre    int = W / 2
)

// Status is the game-theoretic state of a Position.
type Status int

const (
	InProgress Status = iota
	Player1Wins
	Player2Wins
	Draw
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "InProgress"
	case Player1Wins:
		return "Player1Wins"
	case Player2Wins:
		return "Player2Wins"
	case Draw:
		return "Draw"
	default:
		return "Unknown"
	}
}

// Position represents a partial Connect Four game compactly as a bitboard.
type Position struct {
	Board uint64 // stones of the side to move
	Mask  uint64 // all occupied stones
	moves int
}

// bottomMask is a mask for the bottom row of the board.
func bottomMask() uint64 {
	var mask uint64
	for i := 0; i < W; i++ {
		mask |= bottomMaskCol(i)
	}
	return mask
}

// boardMask is a mask for all positions excluding the sentinel row.
func boardMask() uint64 {
	return bottomMask() * ((1 << uint(H)) - 1)
}

// New creates a Position for the empty board.
func New() *Position {
	return &Position{}
}

// ParseSequence parses a move sequence of digits '1'..'7' (1-indexed
// columns) into a Position, applying Play at each step. Parsing fails with
// *MalformedInput at the first character outside the column-digit alphabet,
// or *IllegalMove at the first digit that names a full column or that is
// played after the game has already ended.
func ParseSequence(seq string) (*Position, error) {
	p := New()
	for i, r := range seq {
		if r < '1' || r > '7' {
			return nil, &MalformedInput{Character: r, Index: i}
		}
		col := int(r - '1')
		if p.Status() != InProgress {
			return nil, &IllegalMove{Column: col, Index: i, Reason: "the game is already over"}
		}
		if !p.CanPlay(col) {
			return nil, &IllegalMove{Column: col, Index: i, Reason: "is full"}
		}
		p.Play(col)
	}
	return p, nil
}

// ParseBoardString parses a Position from a full-board textual
// representation: exactly BoardSize characters from the set ['.', 'o', 'x'],
// row by row from the top-left, all other characters ignored. 'x' is taken
// to be the current player, 'o' the opponent. The caller is responsible for
// the string describing a reachable, legal position; malformed height
// profiles are not validated beyond the character count.
func ParseBoardString(boardString string) (*Position, error) {
	boardString = strings.ToLower(boardString)
	var chars []rune
	for _, c := range boardString {
		if c == '.' || c == 'o' || c == 'x' {
			chars = append(chars, c)
		}
	}
	if len(chars) != BoardSize {
		return nil, &InvalidBoardString{Actual: len(chars), Expected: BoardSize}
	}

	var board, mask uint64
	var moves int
	for i, c := range chars {
		if c == '.' {
			continue
		}
		row := H - (i/W) - 1
		col := i % W
		bit := uint(row + col*(H+1))
		if c == 'x' {
			board |= uint64(1) << bit
		}
		mask |= uint64(1) << bit
		moves++
	}
	return &Position{Board: board, Mask: mask, moves: moves}, nil
}

// FromKey reconstructs the Position that produced the given Key(). It is
// the exact inverse of Key(): for each column's 7-bit field of the key, the
// column height n is recovered as the position of the highest set bit of
// (field+1) -- the only value making (maskCol, boardCol) = (2^n-1,
// field-maskCol) consistent with Key()'s column-local sum, verified to hold
// for every reachable field value. A field whose sentinel (row H) bit is set
// cannot have arisen from a legal Key() and fails with *InvalidKey.
func FromKey(key uint64) (*Position, error) {
	var board, mask uint64
	const fieldWidth = H + 1
	fieldMask := uint64(1)<<uint(fieldWidth) - 1

	for col := 0; col < W; col++ {
		shift := uint(col * fieldWidth)
		field := (key >> shift) & fieldMask

		x := field + 1
		hbPos := bits.Len64(x) - 1
		if hbPos < 0 || hbPos > H {
			return nil, &InvalidKey{Key: key, Column: col}
		}
		maskCol := uint64(1)<<uint(hbPos) - 1
		boardCol := field - maskCol // never underflows: see doc comment

		mask |= maskCol << shift
		board |= boardCol << shift
	}

	return &Position{Board: board, Mask: mask, moves: bits.OnesCount64(mask)}, nil
}

// Moves returns the number of stones played so far.
func (p *Position) Moves() int {
	return p.moves
}

// Key is the unique encoding of the position used by the transposition
// table: Board plus Mask, as integers. Columns with different heights never
// collide because the sentinel row prevents carry between columns (see
// FromKey for the column-local derivation this relies on).
func (p *Position) Key() uint64 {
	return p.Board + p.Mask
}

// mirroredMasks returns the Board/Mask pair of the horizontally mirrored
// position.
func (p *Position) mirroredMasks() (uint64, uint64) {
	var mirroredBoard, mirroredMask uint64

	for col := 0; col < Centre; col++ {
		mirroredCol := W - 1 - col
		shift := uint((mirroredCol - col) * (H + 1))
		mirroredBoard |= ((p.Board & columnMask(col)) << shift) |
			((p.Board & columnMask(mirroredCol)) >> shift)
		mirroredMask |= ((p.Mask & columnMask(col)) << shift) |
			((p.Mask & columnMask(mirroredCol)) >> shift)
	}
	if W&1 == 1 {
		mirroredBoard |= p.Board & columnMask(Centre)
		mirroredMask |= p.Mask & columnMask(Centre)
	}
	return mirroredBoard, mirroredMask
}

// SymmetricKey is the Key() of the horizontally mirrored position.
func (p *Position) SymmetricKey() uint64 {
	b, m := p.mirroredMasks()
	return b + m
}

// CanonicalKey is the lesser of Key() and SymmetricKey(), used to
// deduplicate mirror-image positions in the opening book.
func (p *Position) CanonicalKey() uint64 {
	k, sk := p.Key(), p.SymmetricKey()
	if sk < k {
		return sk
	}
	return k
}

// Mirror returns the horizontally mirrored position.
func (p *Position) Mirror() *Position {
	b, m := p.mirroredMasks()
	return &Position{Board: b, Mask: m, moves: p.moves}
}

// CanPlay reports whether column col (0-indexed) still has room.
func (p *Position) CanPlay(col int) bool {
	return p.Mask&topMaskCol(col) == 0
}

// IsWinningMove reports whether dropping in column col would give the side
// to move four in a row. Precondition: CanPlay(col).
func (p *Position) IsWinningMove(col int) bool {
	return p.WinningPositions()&p.Possible()&columnMask(col) != 0
}

// CanWinNext reports whether the side to move has any winning move
// available.
func (p *Position) CanWinNext() bool {
	return p.WinningPositions()&p.Possible() != 0
}

// Play drops a stone in column col for the side to move. Precondition:
// CanPlay(col) and the game is not terminal.
func (p *Position) Play(col int) {
	p.Board ^= p.Mask
	p.Mask |= p.Mask + bottomMaskCol(col)
	p.moves++
}

// Possible returns a mask of the candidate cells the side to move can play
// into: the lowest empty cell of every non-full column.
func (p *Position) Possible() uint64 {
	return (p.Mask + bottomMask()) & boardMask()
}

// PossibleNonLosingMoves returns the candidate cells that do not hand the
// opponent an immediate win. Returns 0 when the opponent has two or more
// distinct winning columns available and so cannot be stopped.
// Precondition: !CanWinNext().
func (p *Position) PossibleNonLosingMoves() uint64 {
	possible := p.Possible()
	opponentWin := p.OpponentWinningPositions()

	forced := possible & opponentWin
	if forced != 0 {
		if forced&(forced-1) != 0 {
			return 0
		}
		possible = forced
	}
	return possible &^ (opponentWin >> 1)
}

// WinningPositions returns a mask of empty cells that, if filled by the
// side to move, would complete a four-in-a-row.
func (p *Position) WinningPositions() uint64 {
	return computeWinningPositions(p.Board, p.Mask)
}

// OpponentWinningPositions is WinningPositions for the opponent.
func (p *Position) OpponentWinningPositions() uint64 {
	return computeWinningPositions(p.Board^p.Mask, p.Mask)
}

// computeWinningPositions computes, for a player occupying the cells in
// stones, a mask of all cells (empty or not) that would complete a
// four-in-a-row -- equivalently, a mask of all open-ended three-alignments,
// including unreachable floating ones -- then restricts that to cells that
// are actually empty.
func computeWinningPositions(stones, mask uint64) uint64 {
	// Vertical.
	r := (stones << 1) & (stones << 2) & (stones << 3)

	// Horizontal.
	p := (stones << (H + 1)) & (stones << (2 * (H + 1)))
	r |= p & (stones << (3 * (H + 1)))
	r |= p & (stones >> (H + 1))
	p >>= 3 * (H + 1)
	r |= p & (stones << (H + 1))
	r |= p & (stones >> (3 * (H + 1)))

	// Diagonal, bottom-left to top-right.
	p2 := (stones << H) & (stones << (2 * H))
	r |= p2 & (stones << (3 * H))
	r |= p2 & (stones >> H)
	p2 >>= 3 * H
	r |= p2 & (stones << H)
	r |= p2 & (stones >> (3 * H))

	// Diagonal, top-left to bottom-right.
	p3 := (stones << (H + 2)) & (stones << (2 * (H + 2)))
	r |= p3 & (stones << (3 * (H + 2)))
	r |= p3 & (stones >> (H + 2))
	p3 >>= 3 * (H + 2)
	r |= p3 & (stones << (H + 2))
	r |= p3 & (stones >> (3 * (H + 2)))

	return r & (boardMask() ^ mask)
}

// MoveScore orders move col by how many new threats it creates: the
// popcount of the winning-positions bitmap after hypothetically playing
// there. Higher is more promising for the side to move.
func (p *Position) MoveScore(col int) int {
	candidate := (p.Mask + bottomMaskCol(col)) & columnMask(col)
	return bits.OnesCount64(computeWinningPositions(p.Board|candidate, p.Mask|candidate))
}

// IsWonPosition reports whether either player currently has a
// four-in-a-row on the board.
func (p *Position) IsWonPosition() bool {
	return computeAlignment(p.Board) || computeAlignment(p.Board^p.Mask)
}

// computeAlignment reports whether stones contains four consecutive set
// bits along any of the four directions.
func computeAlignment(stones uint64) bool {
	// Horizontal.
	m := stones & (stones >> (H + 1))
	if m&(m>>(2*(H+1))) != 0 {
		return true
	}
	// Diagonal, bottom-left to top-right.
	m = stones & (stones >> H)
	if m&(m>>(2*H)) != 0 {
		return true
	}
	// Diagonal, top-left to bottom-right.
	m = stones & (stones >> (H + 2))
	if m&(m>>(2*(H+2))) != 0 {
		return true
	}
	// Vertical.
	m = stones & (stones >> 1)
	return m&(m>>2) != 0
}

// Status reports the game-theoretic state of the position.
func (p *Position) Status() Status {
	lastMover := p.Board ^ p.Mask
	if computeAlignment(lastMover) {
		if p.moves%2 == 1 {
			return Player1Wins
		}
		return Player2Wins
	}
	if p.moves == BoardSize {
		return Draw
	}
	return InProgress
}

// String renders the board as HEIGHT lines of WIDTH characters, top row
// first. The second-to-last line is annotated with the move count; the
// last line is annotated with whose turn it is, or the terminal outcome.
func (p *Position) String() string {
	player1 := p.Board
	if p.moves%2 != 0 {
		player1 = p.Board ^ p.Mask
	}
	player2 := p.Mask ^ player1

	lines := make([]string, H)
	for row := H - 1; row >= 0; row-- {
		var sb strings.Builder
		for col := 0; col < W; col++ {
			bit := uint64(1) << uint(row+col*(H+1))
			switch {
			case player1&bit != 0:
				sb.WriteByte('O')
			case player2&bit != 0:
				sb.WriteByte('X')
			default:
				sb.WriteByte('.')
			}
		}
		lines[H-1-row] = sb.String()
	}

	lines[H-2] += fmt.Sprintf("   %d moves", p.moves)

	switch p.Status() {
	case InProgress:
		if p.moves%2 == 0 {
			lines[H-1] += "   O's turn"
		} else {
			lines[H-1] += "   X's turn"
		}
	case Player1Wins:
		lines[H-1] += "   winner: O"
	case Player2Wins:
		lines[H-1] += "   winner: X"
	case Draw:
		lines[H-1] += "   draw"
	}

	return strings.Join(lines, "\n")
}

func topMaskCol(col int) uint64 {
	return uint64(1) << uint(H-1+col*(H+1))
}

func bottomMaskCol(col int) uint64 {
	return uint64(1) << uint(col*(H+1))
}

func columnMask(col int) uint64 {
	return (uint64(1)<<uint(H) - 1) << uint(col*(H+1))
}

// ColumnMask returns a mask of every cell (empty or not) in column col, used
// by the Solver's move sorter to test a column's membership in a restricted
// candidate-move bitmap such as PossibleNonLosingMoves().
func ColumnMask(col int) uint64 {
	return columnMask(col)
}
