// Package solver implements the exact Connect Four searcher: negamax with
// alpha-beta pruning, a transposition-table upper-bound cache, move ordering
// by threat count and column-center distance, and an iterative-deepening
// null-window ("dichotomic") driver over the score range.
package solver

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/YKhan142008/c4-solver/internal/book"
	"github.com/YKhan142008/c4-solver/internal/position"
	"github.com/YKhan142008/c4-solver/internal/transtable"
)

// Score bounds for a WIDTH*HEIGHT Connect Four board. A win scores
// (WIDTH*HEIGHT+1-movesPlayed)/2 from the point of view of the side to
// move, negated for a loss, 0 for a draw.
const (
	MaxScore = (position.BoardSize + 1) / 2
	MinScore = -position.BoardSize / 2

	// minScoreConst biases negamax's internal score range into the small
	// non-negative range the transposition table packs into a byte. It is
	// distinct from MinScore: it is the minimum score negamax can ever
	// return from a *non-immediately-losing* node (the -2 accounts for the
	// two plies a forced loss is always at least that far away once
	// win-next and possibleNonLosingMoves==0 are ruled out above it).
	minScoreConst = -(position.BoardSize - 2) / 2

	// defaultTableCapacity sizes the transposition table for a full 7x6
	// search; it need not be prime (see package transtable).
	defaultTableCapacity = 8 << 20
)

// Solver performs exact negamax search over Position values, memoizing
// visited nodes in a fixed-size TranspositionTable and optionally
// short-circuiting shallow positions through an OpeningBook.
type Solver struct {
	tt          *transtable.Table
	book        *book.OpeningBook
	explored    uint64
	log         zerolog.Logger
	columnOrder [position.W]int
}

// New creates a Solver with a transposition table of the given capacity. A
// capacity of 0 selects a default sized for a full 7x6 search.
func New(capacity int) *Solver {
	return NewWithLogger(capacity, zerolog.Nop())
}

// NewWithLogger is New with an explicit logger for search diagnostics
// (book hits, iterative-deepening boundaries). Pass zerolog.Nop() for
// silence, which is New's default.
func NewWithLogger(capacity int, log zerolog.Logger) *Solver {
	if capacity <= 0 {
		capacity = defaultTableCapacity
	}
	s := &Solver{tt: transtable.NewWithLogger(capacity, log), log: log}
	for i := range s.columnOrder {
		s.columnOrder[i] = position.W/2 + (1-2*(i%2))*((i+1)/2)
	}
	return s
}

// Reset clears the transposition table and the exploration counter.
func (s *Solver) Reset() {
	s.tt.Reset()
	s.explored = 0
}

// ExploredCount is the number of negamax nodes visited since the last Reset.
func (s *Solver) ExploredCount() uint64 {
	return s.explored
}

// Book returns the Solver's opening book, or nil if none is set.
func (s *Solver) Book() *book.OpeningBook {
	return s.book
}

// SetBook wires an opening book into DichotomicSolve's pre-search
// short-circuit. Passing nil disables the book consultation.
func (s *Solver) SetBook(b *book.OpeningBook) {
	s.book = b
}

// Negamax returns the score of p within the window [alpha, beta): if the
// true score is <= alpha, the return value is only an upper bound; if it is
// >= beta, only a lower bound; otherwise the return value is exact.
func (s *Solver) Negamax(p *position.Position, alpha, beta int) int {
	s.explored++

	if p.Moves() == position.BoardSize {
		return 0
	}
	if p.CanWinNext() {
		return (position.BoardSize + 1 - p.Moves()) / 2
	}

	possible := p.PossibleNonLosingMoves()
	if possible == 0 {
		return -(position.BoardSize - p.Moves()) / 2
	}

	max := (position.BoardSize - 1 - p.Moves()) / 2
	if beta > max {
		beta = max
		if alpha >= beta {
			return beta
		}
	}

	key := p.Key()
	if v, ok := s.tt.Get(key); ok {
		upper := int(v) + minScoreConst - 1
		if beta > upper {
			beta = upper
			if alpha >= beta {
				return beta
			}
		}
	}

	for _, col := range s.orderedMoves(p, possible) {
		next := *p
		next.Play(col)
		score := -s.Negamax(&next, -beta, -alpha)
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
	}

	s.tt.Put(key, int8(alpha-minScoreConst+1))
	return alpha
}

// orderedMoves lists the columns whose candidate bit is set in possible,
// ordered by descending threat count (MoveScore), breaking ties by
// column-center distance (s.columnOrder: 3, 2, 4, 1, 5, 0, 6).
func (s *Solver) orderedMoves(p *position.Position, possible uint64) []int {
	type candidate struct {
		col   int
		score int
	}
	candidates := make([]candidate, 0, position.W)
	for _, col := range s.columnOrder {
		if possible&position.ColumnMask(col) == 0 {
			continue
		}
		candidates = append(candidates, candidate{col: col, score: p.MoveScore(col)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	cols := make([]int, len(candidates))
	for i, c := range candidates {
		cols[i] = c.col
	}
	return cols
}

// Solve returns the exact game-theoretic score of p: positive if the side to
// move wins with perfect play, negative if they lose, 0 for a draw, scaled
// by distance to the end of the game (see package-level score convention).
func (s *Solver) Solve(p *position.Position) int {
	return s.DichotomicSolve(p, false)
}

// SolveWeak returns only the sign of Solve(p): -1, 0, or +1.
func (s *Solver) SolveWeak(p *position.Position) int {
	return s.DichotomicSolve(p, true)
}

// DichotomicSolve is the iterative null-window driver: it binary-searches
// the score range using a sequence of negamax null-window probes
// (beta = alpha+1), which cuts off far more aggressively than a single
// wide-window call. If weak, the initial window is [-1, 1] and the result is
// one of {-1, 0, 1}.
//
// If the Solver has an OpeningBook set and p.Moves() equals the book's
// depth, the book's stored score (only its sign, if weak) is returned
// directly without searching.
func (s *Solver) DichotomicSolve(p *position.Position, weak bool) int {
	if s.book != nil {
		if score, ok := s.book.Lookup(p); ok {
			s.log.Debug().Int("moves", p.Moves()).Msg("opening book hit")
			if weak {
				switch {
				case score > 0:
					return 1
				case score < 0:
					return -1
				}
			}
			return int(score)
		}
	}

	min := -(position.BoardSize - p.Moves()) / 2
	max := (position.BoardSize + 1 - p.Moves()) / 2
	if weak {
		min, max = -1, 1
	}

	for min < max {
		mid := min + (max-min)/2
		if mid <= 0 && min/2 < mid {
			mid = min / 2
		} else if mid >= 0 && max/2 > mid {
			mid = max / 2
		}
		r := s.Negamax(p, mid, mid+1)
		if r <= mid {
			max = r
		} else {
			min = r
		}
	}
	// A fail-high probe in weak mode can leave min at the raw lower bound it
	// returned (e.g. an immediate win's full score); only its sign is kept.
	if weak && min > 1 {
		min = 1
	}
	s.log.Debug().Int("moves", p.Moves()).Uint64("explored", s.explored).Int("score", min).Msg("dichotomic solve complete")
	return min
}
