package packwiz

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tuxinal/packwiz-parent-pack/pkg/hashfmt"
)

// Assemble rewrites a child pack document to describe the merged pack:
// the parent link is dropped and the index hash is set to the sha256 of
// mergedIndex. The merged index is always declared as sha256. doc is
// not modified.
func Assemble(
	doc Document, mergedIndex []byte,
) (Document, string, error) {
	sum := sha256.Sum256(mergedIndex)
	hash := hex.EncodeToString(sum[:])

	out := doc.Clone()
	index, ok := out.Table("index")
	if !ok {
		return nil, "", &DecodeError{
			Doc: PackFile,
			Err: fmt.Errorf("missing [index] table"),
		}
	}
	index["hash"] = hash
	index["hash-format"] = hashfmt.SHA256.String()

	if options, ok := out.Table("options"); ok {
		delete(options, "parent")
	}
	return out, hash, nil
}
