package hashfmt

import (
	"fmt"
	"strings"
)

type MismatchError struct {
	Expected string
	Actual   string
	Format   Format
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf(
		"%s mismatch: expected %s, got %s",
		e.Format, e.Expected, e.Actual,
	)
}

// Verify checks data against expected under format f. Hex digests
// compare case-insensitively.
func Verify(data []byte, expected string, f Format) error {
	actual := f.Sum(data)
	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return &MismatchError{
			Expected: expected,
			Actual:   actual,
			Format:   f,
		}
	}
	return nil
}
