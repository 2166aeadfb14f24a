package book

import "fmt"

// CorruptBook indicates an opening book file failed header validation: a
// dimension, value width, or version field did not match what this module
// was built to read.
type CorruptBook struct {
	Field string
	Got   byte
	Want  byte
}

func (e *CorruptBook) Error() string {
	return fmt.Sprintf("corrupt opening book: field %s = %d, want %d", e.Field, e.Got, e.Want)
}
