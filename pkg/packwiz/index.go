package packwiz

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/tuxinal/packwiz-parent-pack/pkg/hashfmt"
)

type File struct {
	File       string          `toml:"file"`
	Hash       string          `toml:"hash"`
	HashFormat *hashfmt.Format `toml:"hash-format,omitempty"`
	Metafile   *bool           `toml:"metafile,omitempty"`
}

// Format returns the entry's own format, or def when it has none.
func (f File) Format(def hashfmt.Format) hashfmt.Format {
	if f.HashFormat != nil {
		return *f.HashFormat
	}
	return def
}

type Index struct {
	HashFormat hashfmt.Format `toml:"hash-format"`
	Files      []File         `toml:"files"`
}

func DecodeIndex(name string, data []byte) (*Index, error) {
	var idx Index
	md, err := toml.Decode(string(data), &idx)
	if err != nil {
		return nil, &DecodeError{Doc: name, Err: err}
	}
	if !md.IsDefined("hash-format") {
		return nil, &DecodeError{
			Doc: name,
			Err: fmt.Errorf("missing required key hash-format"),
		}
	}
	for i, f := range idx.Files {
		if f.File == "" || f.Hash == "" {
			return nil, &DecodeError{
				Doc: name,
				Err: fmt.Errorf("files[%d]: file and hash are required", i),
			}
		}
	}
	return &idx, nil
}

// Encode serializes the index in file order.
func (idx *Index) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(idx); err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}
	return buf.Bytes(), nil
}
