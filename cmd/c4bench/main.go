// Command c4bench runs the solver over a benchmark dataset file (lines of
// "<sequence> <score>") and reports mean compute time, mean explored
// positions, and thousands of explored positions per second, mirroring the original
// benchmark harness's report.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/YKhan142008/c4-solver/internal/bench"
)

func main() {
	file := flag.String("file", "test.txt", "benchmark file with sequences and expected scores")
	weak := flag.Bool("weak", false, "use the weak (sign-only) solver")
	flag.Parse()

	cases, err := bench.LoadFile(*file)
	if err != nil {
		log.Fatal(err)
	}

	summary, err := bench.Run(cases, *weak)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("cases:              %d\n", summary.Cases)
	fmt.Printf("mismatches:         %d\n", summary.Mismatches)
	fmt.Printf("mean compute time:  %.3f ms\n", float64(summary.MeanComputeTime.Microseconds())/1000)
	fmt.Printf("mean explored pos:  %.2f\n", summary.MeanExploredPositions)
	fmt.Printf("K pos / second:     %.2f\n", summary.KPosPerSecond)
}
