package derive

import "errors"

var (
	ErrManifestMissing = errors.New("manifest missing")
	ErrOutputNotEmpty  = errors.New("output directory is not empty")
	ErrNoParent        = errors.New("pack has no parent specified")
)
