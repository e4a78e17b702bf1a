package hashfmt

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Format names a digest algorithm used by packwiz indexes.
type Format uint8

const (
	SHA1 Format = iota + 1
	SHA256
	SHA512
	Murmur2
	MD5
)

var names = map[Format]string{
	SHA1:    "sha1",
	SHA256:  "sha256",
	SHA512:  "sha512",
	Murmur2: "murmur2",
	MD5:     "md5",
}

func Parse(s string) (Format, error) {
	for f, name := range names {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown hash format %q", s)
}

func (f Format) String() string {
	if name, ok := names[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

func (f Format) MarshalText() ([]byte, error) {
	name, ok := names[f]
	if !ok {
		return nil, fmt.Errorf("invalid hash format %d", uint8(f))
	}
	return []byte(name), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Sum returns the digest of data in the textual form packwiz stores:
// lowercase hex, or decimal for murmur2.
func (f Format) Sum(data []byte) string {
	switch f {
	case SHA1:
		h := sha1.Sum(data)
		return hex.EncodeToString(h[:])
	case SHA256:
		h := sha256.Sum256(data)
		return hex.EncodeToString(h[:])
	case SHA512:
		h := sha512.Sum512(data)
		return hex.EncodeToString(h[:])
	case MD5:
		h := md5.Sum(data)
		return hex.EncodeToString(h[:])
	case Murmur2:
		return strconv.FormatUint(uint64(Fingerprint(data)), 10)
	}
	panic(fmt.Sprintf("hashfmt: invalid format %d", uint8(f)))
}
