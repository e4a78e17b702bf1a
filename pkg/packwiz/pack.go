package packwiz

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/tuxinal/packwiz-parent-pack/pkg/hashfmt"
)

// PackFile is the fixed name of a pack descriptor.
const PackFile = "pack.toml"

// Pack is the typed view of pack.toml. Only the fields the merge needs
// are modelled; see Document for the lossless view.
type Pack struct {
	Index   PackIndex `toml:"index"`
	Options *Options  `toml:"options"`
}

type PackIndex struct {
	File       string         `toml:"file"`
	HashFormat hashfmt.Format `toml:"hash-format"`
	Hash       string         `toml:"hash"`
}

type Options struct {
	Parent string `toml:"parent"`
}

// Parent returns the parent pack URL, or "" if none is declared.
func (p *Pack) Parent() string {
	if p.Options == nil {
		return ""
	}
	return p.Options.Parent
}

func DecodePack(name string, data []byte) (*Pack, error) {
	var p Pack
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return nil, &DecodeError{Doc: name, Err: err}
	}
	for _, key := range [][]string{
		{"index", "file"},
		{"index", "hash-format"},
		{"index", "hash"},
	} {
		if !md.IsDefined(key...) {
			return nil, &DecodeError{
				Doc: name,
				Err: fmt.Errorf("missing required key %s", toml.Key(key)),
			}
		}
	}
	if p.Index.File == "" {
		return nil, &DecodeError{
			Doc: name,
			Err: fmt.Errorf("index.file is empty"),
		}
	}
	return &p, nil
}
