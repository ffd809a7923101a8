package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/swaggest/jsonschema-go"
)

// MaxID is the largest local identifier a source can assign.
const MaxID = 0xFFFFFF

// SourceKey names the plugin file that contributed a record, e.g. "Skyrim.esm".
type SourceKey string

// Key identifies one record by its local identifier within its source. The
// text form is "01A2B3:Skyrim.esm".
type Key struct {
	ID     uint32
	Source SourceKey
}

func NewKey(id uint32, source SourceKey) Key {
	return Key{ID: id, Source: source}
}

func ParseKey(s string) (Key, error) {
	id, source, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || id == "" || source == "" {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}

	n, err := strconv.ParseUint(id, 16, 32)
	if err != nil || n > MaxID {
		return Key{}, fmt.Errorf("%w: %q: bad identifier", ErrInvalidKey, s)
	}

	return Key{ID: uint32(n), Source: SourceKey(source)}, nil
}

func (k Key) IsZero() bool {
	return k == Key{}
}

func (k Key) String() string {
	return fmt.Sprintf("%06X:%s", k.ID, k.Source)
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	v, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Key) UnmarshalJSON(bs []byte) error {
	var s string
	if err := json.Unmarshal(bs, &s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

func (k Key) MarshalYAML() (any, error) {
	return k.String(), nil
}

func (k *Key) UnmarshalYAML(bs []byte) error {
	var s string
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

func (Key) PrepareJSONSchema(schema *jsonschema.Schema) error {
	schema.Type = nil
	schema.AddType(jsonschema.String)
	schema.Properties = nil
	schema.Required = nil
	schema.WithPattern(`^[0-9A-Fa-f]{1,6}:.+$`)
	schema.WithExamples("01A2B3:Skyrim.esm")
	return nil
}
