package packwiz

import "fmt"

// DecodeError reports a malformed or incomplete TOML document.
type DecodeError struct {
	Doc string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Doc, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
