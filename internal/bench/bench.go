// Package bench loads the solver's benchmark datasets (move sequence plus
// expected score, one per line) and runs a Solver over them, reporting the
// same throughput statistics the original benchmark harness reports: mean
// compute time, mean explored positions, and thousands of explored positions
// per second.
package bench

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/YKhan142008/c4-solver/internal/position"
	"github.com/YKhan142008/c4-solver/internal/solver"
)

// Case is one benchmark line: a move sequence and its known exact score.
type Case struct {
	Sequence string
	Expected int
}

// LoadFile parses a benchmark file: each line is "<sequence> <score>"
// separated by whitespace, score a signed decimal integer. Blank lines are
// skipped.
func LoadFile(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cases []Case
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("bench: %s:%d: expected \"<sequence> <score>\", got %q", path, lineNo, line)
		}
		score, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("bench: %s:%d: invalid score %q: %w", path, lineNo, fields[1], err)
		}
		cases = append(cases, Case{Sequence: fields[0], Expected: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cases, nil
}

// Summary is the aggregate timing/throughput report for a Run.
type Summary struct {
	Cases                 int
	Mismatches            int
	MeanComputeTime       time.Duration
	MeanExploredPositions float64
	KPosPerSecond         float64
}

// Run solves every case with a fresh Solver per case (mirroring the
// original harness's per-case solver construction, which keeps one case's
// transposition table from warming the next), comparing the result against
// Case.Expected (or its sign, if weak) and accumulating timing statistics.
func Run(cases []Case, weak bool) (Summary, error) {
	var (
		totalTime     time.Duration
		totalExplored uint64
		mismatches    int
	)

	for _, c := range cases {
		p, err := position.ParseSequence(c.Sequence)
		if err != nil {
			return Summary{}, fmt.Errorf("bench: sequence %q: %w", c.Sequence, err)
		}

		s := solver.New(0)
		start := time.Now()
		var got int
		if weak {
			got = s.SolveWeak(p)
		} else {
			got = s.Solve(p)
		}
		elapsed := time.Since(start)

		want := c.Expected
		if weak {
			want = sign(c.Expected)
		}
		if got != want {
			mismatches++
		}

		totalTime += elapsed
		totalExplored += s.ExploredCount()
	}

	n := float64(len(cases))
	if n == 0 {
		return Summary{}, nil
	}
	meanTime := time.Duration(float64(totalTime) / n)
	meanExplored := float64(totalExplored) / n
	var kPosPerSec float64
	if meanTime > 0 {
		kPosPerSec = 0.001 * meanExplored / meanTime.Seconds()
	}

	return Summary{
		Cases:                 len(cases),
		Mismatches:            mismatches,
		MeanComputeTime:       meanTime,
		MeanExploredPositions: meanExplored,
		KPosPerSecond:         kPosPerSec,
	}, nil
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
