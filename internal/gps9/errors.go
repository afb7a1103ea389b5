package gps9

import "fmt"

// ErrStructureMismatch reports that a DEVC subtree does not have the shape
// GPS9 projection requires: a missing STRM/TYPE/SCAL/GPS9 record, a TYPE
// string other than "lllllllSS", a SCAL record with other than 9 elements,
// a DEVC whose type is not Nested, or a GPS9 payload shorter than one
// 32-byte sample.
// Any of these makes the record's layout untrustworthy, so projection
// fails hard rather than guessing.
type ErrStructureMismatch struct {
	Reason string
}

func (e *ErrStructureMismatch) Error() string {
	return fmt.Sprintf("gps9: structure mismatch: %s", e.Reason)
}

func mismatch(format string, args ...any) error {
	return &ErrStructureMismatch{Reason: fmt.Sprintf(format, args...)}
}
