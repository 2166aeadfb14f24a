package position

import (
	"strings"
	"testing"
)

func TestParseSequenceStatusAndString(t *testing.T) {
	tests := []struct {
		name   string
		seq    string
		status Status
		want   string
	}{
		{
			name:   "in progress",
			seq:    "44455554221",
			status: InProgress,
			want: strings.Join([]string{
				".......",
				".......",
				"...XO..",
				"...OX..",
				".X.XO..   11 moves",
				"OO.OX..   X's turn",
			}, "\n"),
		},
		{
			name:   "player1 wins",
			seq:    "4455326",
			status: Player1Wins,
			want: strings.Join([]string{
				".......",
				".......",
				".......",
				".......",
				"...XX..   7 moves",
				".XOOOO.   winner: O",
			}, "\n"),
		},
		{
			name:   "draw",
			seq:    "121212212121343434434343565656656565777777",
			status: Draw,
			want: strings.Join([]string{
				"XOXOXOX",
				"XOXOXOO",
				"XOXOXOX",
				"OXOXOXO",
				"OXOXOXX   42 moves",
				"OXOXOXO   draw",
			}, "\n"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParseSequence(tc.seq)
			if err != nil {
				t.Fatalf("ParseSequence(%q): %v", tc.seq, err)
			}
			if got := p.Status(); got != tc.status {
				t.Errorf("Status() = %v, want %v", got, tc.status)
			}
			if got := p.String(); got != tc.want {
				t.Errorf("String() =\n%s\nwant\n%s", got, tc.want)
			}
		})
	}
}

func TestParseSequenceErrors(t *testing.T) {
	if _, err := ParseSequence("a"); err == nil {
		t.Fatal("expected MalformedInput for non-digit")
	} else if _, ok := err.(*MalformedInput); !ok {
		t.Fatalf("got %T, want *MalformedInput", err)
	}

	if _, err := ParseSequence("8"); err == nil {
		t.Fatal("expected MalformedInput for out-of-range digit")
	} else if _, ok := err.(*MalformedInput); !ok {
		t.Fatalf("got %T, want *MalformedInput", err)
	}

	full := strings.Repeat("1", 6)
	if _, err := ParseSequence(full + "1"); err == nil {
		t.Fatal("expected IllegalMove for a full column")
	} else if _, ok := err.(*IllegalMove); !ok {
		t.Fatalf("got %T, want *IllegalMove", err)
	}
}

func TestParseSequenceAllowsWinningMoves(t *testing.T) {
	// "4455326" ends in a winning move for the side that just played;
	// the sequence itself must still parse successfully.
	p, err := ParseSequence("4455326")
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	if p.Status() == InProgress {
		t.Fatal("expected a terminal status after the winning move")
	}

	if _, err := ParseSequence("44553261"); err == nil {
		t.Fatal("expected IllegalMove after the game already ended")
	} else if _, ok := err.(*IllegalMove); !ok {
		t.Fatalf("got %T, want *IllegalMove", err)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	seqs := []string{
		"",
		"4",
		"44",
		"4455326",
		"44455554221",
		"121212212121343434434343565656656565777777",
		"1234567123456723456712345671",
	}
	for _, seq := range seqs {
		p, err := ParseSequence(seq)
		if err != nil {
			t.Fatalf("ParseSequence(%q): %v", seq, err)
		}

		key := p.Key()
		got, err := FromKey(key)
		if err != nil {
			t.Fatalf("FromKey(%d) for seq %q: %v", key, seq, err)
		}
		if got.Key() != key {
			t.Errorf("FromKey(Key(p)).Key() = %d, want %d (seq %q)", got.Key(), key, seq)
		}
		if got.String() != p.String() {
			t.Errorf("FromKey(Key(p)).String() mismatch for seq %q:\ngot:\n%s\nwant:\n%s", seq, got.String(), p.String())
		}

		symKey := p.SymmetricKey()
		gotSym, err := FromKey(symKey)
		if err != nil {
			t.Fatalf("FromKey(symKey) for seq %q: %v", seq, err)
		}
		if gotSym.SymmetricKey() != p.Key() {
			t.Errorf("FromKey(P.symmetricKey()).symmetricKey() = %d, want %d (seq %q)", gotSym.SymmetricKey(), p.Key(), seq)
		}
	}
}

// TestParseBoardStringRoundTrip exercises ParseBoardString as a second,
// independent construction path for the same position ParseSequence builds:
// the literal grid below is the unannotated board rendering from the "in
// progress" case of TestParseSequenceStatusAndString (the trailing "N moves"
// / "X's turn" annotations are stripped, since those words themselves
// contain the letters 'o'/'x' and would otherwise be miscounted as cells).
func TestParseBoardStringRoundTrip(t *testing.T) {
	p, err := ParseSequence("44455554221")
	if err != nil {
		t.Fatal(err)
	}

	raw := strings.Join([]string{
		".......",
		".......",
		"...XO..",
		"...OX..",
		".X.XO..",
		"OO.OX..",
	}, "\n")

	got, err := ParseBoardString(raw)
	if err != nil {
		t.Fatalf("ParseBoardString: %v", err)
	}
	if got.Key() != p.Key() {
		t.Errorf("ParseBoardString round trip: Key() = %d, want %d", got.Key(), p.Key())
	}
	if got.Moves() != p.Moves() {
		t.Errorf("ParseBoardString round trip: Moves() = %d, want %d", got.Moves(), p.Moves())
	}
}

func TestParseBoardStringRejectsWrongLength(t *testing.T) {
	if _, err := ParseBoardString(strings.Repeat(".", BoardSize-1)); err == nil {
		t.Fatal("expected *InvalidBoardString for a short board string")
	} else if _, ok := err.(*InvalidBoardString); !ok {
		t.Fatalf("got %T, want *InvalidBoardString", err)
	}
}

func TestCanonicalKeySymmetry(t *testing.T) {
	p, err := ParseSequence("4455326")
	if err != nil {
		t.Fatal(err)
	}
	if p.CanonicalKey() != p.Mirror().CanonicalKey() {
		t.Errorf("canonical key not symmetric: %d vs %d", p.CanonicalKey(), p.Mirror().CanonicalKey())
	}
}

func TestIsWinningMoveAgreesWithPlay(t *testing.T) {
	p, err := ParseSequence("44455554221")
	if err != nil {
		t.Fatal(err)
	}
	for col := 0; col < W; col++ {
		if !p.CanPlay(col) {
			continue
		}
		predicted := p.IsWinningMove(col)

		next := *p
		next.Play(col)
		actual := computeAlignment(next.Board ^ next.Mask)

		if predicted != actual {
			t.Errorf("column %d: IsWinningMove=%v, actual alignment after play=%v", col, predicted, actual)
		}
	}
}

func TestPossibleNonLosingMovesUnstoppable(t *testing.T) {
	// Property: PossibleNonLosingMoves() is 0 whenever the opponent has two
	// or more distinct winning columns available, and otherwise is a subset
	// of Possible(). (It can also be 0 when every playable cell lies
	// directly below an opponent winning cell.)
	seqs := []string{
		"", "4", "44", "4455326", "44455554221",
		"2233554477766611", "343434343434", "11223344556677",
	}
	for _, seq := range seqs {
		p, err := ParseSequence(seq)
		if err != nil {
			continue // sequence ran into a terminal position; skip
		}
		if p.CanWinNext() {
			continue
		}
		forced := p.Possible() & p.OpponentWinningPositions()
		multipleThreats := forced != 0 && forced&(forced-1) != 0

		got := p.PossibleNonLosingMoves()
		if multipleThreats {
			if got != 0 {
				t.Errorf("seq %q: PossibleNonLosingMoves() = %d, want 0 (opponent has >1 winning column)", seq, got)
			}
			continue
		}
		if got&^p.Possible() != 0 {
			t.Errorf("seq %q: PossibleNonLosingMoves() %d is not a subset of Possible() %d", seq, got, p.Possible())
		}
	}
}
