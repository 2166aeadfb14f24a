package bench

import (
	"os"
	"path/filepath"
	"testing"
)

// Both sequences below are deep into the known draw line from the
// board-status tests (columns 1-6 full, column 7 the only legal column for
// the rest of the game): every move from here to the end is forced, so the
// exact score is 0 (draw) regardless of how many of the remaining forced
// moves have already been played, and the search tree to prove it is tiny.
const (
	seqA = "121212212121343434434343565656656565"   // 36 moves
	seqB = "1212122121213434344343435656566565657" // 37 moves

	// immediateWin is the first six moves of the validated "4455326"
	// winning sequence from position_test.go: the side to move already
	// has a winning move available, so its exact score is a cheap,
	// single-ply computation and not a draw -- unlike seqA/seqB above,
	// it exercises the non-zero scoring path (win value, TT bound
	// packing) that a draw-only dataset never reaches.
	immediateWin = "445532"
)

func writeBenchFile(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.txt")
	var content string
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFileParsesSequenceAndScore(t *testing.T) {
	path := writeBenchFile(t, seqA+" 0", "", seqB+" 0")

	cases, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("len(cases) = %d, want 2", len(cases))
	}
	if cases[0].Sequence != seqA || cases[0].Expected != 0 {
		t.Errorf("cases[0] = %+v, want {%q 0}", cases[0], seqA)
	}
}

func TestLoadFileRejectsMalformedLine(t *testing.T) {
	path := writeBenchFile(t, "4 5 6")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected an error for a line with the wrong number of fields")
	}
}

func TestLoadFileRejectsNonIntegerScore(t *testing.T) {
	path := writeBenchFile(t, seqA+" not-a-number")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected an error for a non-integer score field")
	}
}

func TestRunReportsMatchingCases(t *testing.T) {
	cases := []Case{
		{Sequence: seqA, Expected: 0},
		{Sequence: seqB, Expected: 0},
	}

	summary, err := Run(cases, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Cases != 2 {
		t.Errorf("Cases = %d, want 2", summary.Cases)
	}
	if summary.Mismatches != 0 {
		t.Errorf("Mismatches = %d, want 0", summary.Mismatches)
	}
	if summary.MeanExploredPositions <= 0 {
		t.Errorf("MeanExploredPositions = %f, want > 0", summary.MeanExploredPositions)
	}
}

func TestRunWeakComparesSign(t *testing.T) {
	cases := []Case{{Sequence: seqA, Expected: 0}}

	summary, err := Run(cases, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Mismatches != 0 {
		t.Errorf("Mismatches = %d, want 0 (weak solve of a draw should be 0)", summary.Mismatches)
	}
}

func TestRunDetectsNonDrawCase(t *testing.T) {
	cases := []Case{{Sequence: immediateWin, Expected: 18}}

	summary, err := Run(cases, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Mismatches != 0 {
		t.Errorf("Mismatches = %d, want 0 (expected score 18 for an immediate win)", summary.Mismatches)
	}

	weakSummary, err := Run([]Case{{Sequence: immediateWin, Expected: 1}}, true)
	if err != nil {
		t.Fatalf("Run (weak): %v", err)
	}
	if weakSummary.Mismatches != 0 {
		t.Errorf("weak Mismatches = %d, want 0 (expected sign +1 for an immediate win)", weakSummary.Mismatches)
	}
}

func TestRunRejectsIllegalSequence(t *testing.T) {
	cases := []Case{{Sequence: "8", Expected: 0}}
	if _, err := Run(cases, false); err == nil {
		t.Fatal("expected an error for an illegal move sequence")
	}
}
