// Command c4solve solves a single Connect Four position given as a move
// sequence, printing its board rendering and exact game-theoretic score.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/YKhan142008/c4-solver/internal/position"
	"github.com/YKhan142008/c4-solver/internal/solver"
)

func main() {
	seq := flag.String("seq", "", "move sequence (digits 1-7); reads one line from stdin if empty")
	weak := flag.Bool("weak", false, "report only the sign of the score")
	verbose := flag.Bool("v", false, "log search diagnostics to stderr")
	flag.Parse()

	sequence := *seq
	if sequence == "" {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			sequence = scanner.Text()
		}
	}

	p, err := position.ParseSequence(sequence)
	if err != nil {
		fmt.Fprintln(os.Stderr, "c4solve:", err)
		os.Exit(1)
	}

	log := zerolog.Nop()
	if *verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
	}
	s := solver.NewWithLogger(0, log)

	var score int
	if *weak {
		score = s.SolveWeak(p)
	} else {
		score = s.Solve(p)
	}

	fmt.Println(p.String())
	fmt.Printf("score: %d\n", score)
	fmt.Printf("explored: %d\n", s.ExploredCount())
}
