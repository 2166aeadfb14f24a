package position

import "fmt"

// MalformedInput indicates a move-sequence string contained a character
// outside the '1'..'7' column-digit alphabet.
type MalformedInput struct {
	Character rune
	Index     int
}

func (e *MalformedInput) Error() string {
	return fmt.Sprintf("malformed input: character %q at index %d is not a column digit 1-7", e.Character, e.Index)
}

// IllegalMove indicates a syntactically valid column digit was illegal in
// context: the column is full, or the game was already over.
type IllegalMove struct {
	Column int
	Index  int
	Reason string
}

func (e *IllegalMove) Error() string {
	return fmt.Sprintf("illegal move at index %d: column %d %s", e.Index, e.Column+1, e.Reason)
}

// InvalidKey indicates a raw key does not decode to a legal position: a
// column's bit pattern implies more stones than HEIGHT allows, or a
// sentinel row bit was found set.
type InvalidKey struct {
	Key    uint64
	Column int
}

func (e *InvalidKey) Error() string {
	return fmt.Sprintf("invalid key %d: column %d does not decode to a legal height", e.Key, e.Column+1)
}

// InvalidBoardString indicates a full-board textual representation did not
// contain exactly BoardSize cell characters from the set ['.', 'o', 'x'].
type InvalidBoardString struct {
	Actual   int
	Expected int
}

func (e *InvalidBoardString) Error() string {
	return fmt.Sprintf("invalid board string length: found %d cells, expected %d", e.Actual, e.Expected)
}
