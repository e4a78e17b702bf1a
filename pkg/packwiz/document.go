package packwiz

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Document is the untyped view of a TOML document. Rewriting through it
// keeps every key the typed views do not model.
type Document map[string]any

func DecodeDocument(name string, data []byte) (Document, error) {
	m := make(map[string]any)
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, &DecodeError{Doc: name, Err: err}
	}
	return Document(m), nil
}

func (d Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(map[string]any(d)); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// Table returns the sub-table at key, or false if key is absent or not
// a table.
func (d Document) Table(key string) (Document, bool) {
	t, ok := d[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return Document(t), true
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	return Document(cloneValue(map[string]any(d)).(map[string]any))
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e).(map[string]any)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
