package packwiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuxinal/packwiz-parent-pack/pkg/hashfmt"
)

const childPack = `name = "Child Pack"
author = "someone"
version = "1.2.0"
pack-format = "packwiz:1.1.0"

[index]
file = "index.toml"
hash-format = "sha256"
hash = "0000"

[versions]
minecraft = "1.20.1"
fabric = "0.14.21"

[options]
parent = "https://example.com/base/pack.toml"
acceptable-game-versions = ["1.20", "1.20.1"]
`

const childIndex = `hash-format = "sha256"

[[files]]
file = "config/a.toml"
hash = "ABCD"

[[files]]
file = "mods/sodium.pw.toml"
hash = "1234"
hash-format = "murmur2"
metafile = true
`

func TestDecodePack(t *testing.T) {
	p, err := DecodePack(PackFile, []byte(childPack))
	require.NoError(t, err)
	assert.Equal(t, "index.toml", p.Index.File)
	assert.Equal(t, hashfmt.SHA256, p.Index.HashFormat)
	assert.Equal(t, "0000", p.Index.Hash)
	assert.Equal(t, "https://example.com/base/pack.toml", p.Parent())
}

func TestDecodePackNoParent(t *testing.T) {
	p, err := DecodePack(PackFile, []byte(`[index]
file = "index.toml"
hash-format = "sha1"
hash = "ff"
`))
	require.NoError(t, err)
	assert.Equal(t, "", p.Parent())
}

func TestDecodePackErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":       "[index\nfile = 1",
		"missing hash": "[index]\nfile = \"index.toml\"\nhash-format = \"sha256\"\n",
		"bad format":   "[index]\nfile = \"i.toml\"\nhash-format = \"crc\"\nhash = \"0\"\n",
		"empty file":   "[index]\nfile = \"\"\nhash-format = \"sha1\"\nhash = \"0\"\n",
	}
	for name, doc := range cases {
		_, err := DecodePack(PackFile, []byte(doc))
		var de *DecodeError
		assert.ErrorAs(t, err, &de, name)
	}
}

func TestDecodeIndex(t *testing.T) {
	idx, err := DecodeIndex("index.toml", []byte(childIndex))
	require.NoError(t, err)
	assert.Equal(t, hashfmt.SHA256, idx.HashFormat)
	require.Len(t, idx.Files, 2)

	assert.Nil(t, idx.Files[0].HashFormat)
	assert.Nil(t, idx.Files[0].Metafile)
	assert.Equal(t, hashfmt.SHA256, idx.Files[0].Format(idx.HashFormat))

	require.NotNil(t, idx.Files[1].HashFormat)
	assert.Equal(t, hashfmt.Murmur2, idx.Files[1].Format(idx.HashFormat))
	require.NotNil(t, idx.Files[1].Metafile)
	assert.True(t, *idx.Files[1].Metafile)
}

func TestDecodeIndexNoFiles(t *testing.T) {
	idx, err := DecodeIndex("index.toml", []byte(`hash-format = "sha1"`))
	require.NoError(t, err)
	assert.Empty(t, idx.Files)
}

func TestDecodeIndexErrors(t *testing.T) {
	_, err := DecodeIndex("index.toml", []byte("[[files]]\nfile = \"a\"\nhash = \"b\"\n"))
	var de *DecodeError
	assert.ErrorAs(t, err, &de)

	_, err = DecodeIndex("index.toml", []byte("hash-format = \"sha1\"\n[[files]]\nfile = \"a\"\n"))
	assert.ErrorAs(t, err, &de)
}

func TestIndexEncodeRoundTrip(t *testing.T) {
	idx, err := DecodeIndex("index.toml", []byte(childIndex))
	require.NoError(t, err)

	out, err := idx.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "metafile = false")

	again, err := DecodeIndex("index.toml", out)
	require.NoError(t, err)
	assert.Equal(t, idx, again)

	out2, err := again.Encode()
	require.NoError(t, err)
	assert.Equal(t, out, out2)
}
