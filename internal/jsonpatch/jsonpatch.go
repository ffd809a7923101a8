// Package jsonpatch applies RFC 6902 patches to configuration documents.
package jsonpatch

import (
	"encoding/json"
	"fmt"

	jp "github.com/evanphx/json-patch/v5"
	"github.com/goccy/go-yaml"
)

type PatchError struct {
	msg string
}

func (p *PatchError) Error() string {
	return p.msg
}

type Patch = jp.Patch

var opts = jp.ApplyOptions{
	EnsurePathExistsOnAdd:    true, // will create paths
	AllowMissingPathOnRemove: true,
}

// Decode parses a patch given as JSON or YAML.
func Decode(bs []byte) (Patch, error) {
	js, err := yaml.YAMLToJSON(bs)
	if err != nil {
		return nil, err
	}
	return jp.DecodePatch(js)
}

func Apply(p Patch, doc json.RawMessage) (json.RawMessage, error) {
	// We only support add/remove/replace
	for _, op := range p {
		switch op.Kind() {
		case "replace", "remove", "add": // OK
		default:
			return nil, &PatchError{fmt.Sprintf("unsupported patch operation %q, must be one of \"replace\", \"add\", \"remove\"", op.Kind())}
		}
	}
	return p.ApplyWithOptions(doc, &opts)
}

// ApplyYAML converts a YAML document to JSON and applies p to it.
func ApplyYAML(p Patch, doc []byte) (json.RawMessage, error) {
	js, err := yaml.YAMLToJSON(doc)
	if err != nil {
		return nil, err
	}
	return Apply(p, js)
}
