package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the file format from the file extension. Anything that is not
// JSON is treated as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Read decodes a list of grass records. JSON input is accepted as well since
// it is a subset of YAML.
func Read(r io.Reader) ([]*Grass, error) {
	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(bs)) == 0 {
		return nil, nil
	}

	var recs []*Grass
	if err := yaml.UnmarshalWithOptions(bs, &recs, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	for i, rec := range recs {
		if rec == nil {
			return nil, fmt.Errorf("record %d: empty entry", i)
		}
		if rec.Key.IsZero() {
			return nil, fmt.Errorf("record %d: %w: missing key", i, ErrInvalidKey)
		}
	}

	return recs, nil
}

func Write(w io.Writer, recs []*Grass, format Format) error {
	if recs == nil {
		recs = []*Grass{}
	}

	var (
		bs  []byte
		err error
	)

	switch format {
	case FormatJSON:
		bs, err = json.MarshalIndent(recs, "", "  ")
		bs = append(bs, '\n')
	case FormatYAML:
		bs, err = yaml.Marshal(recs)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(bs)
	return err
}

func ReadFile(path string) ([]*Grass, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

func WriteFile(path string, recs []*Grass) error {
	var buf bytes.Buffer
	if err := Write(&buf, recs, FormatOf(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
