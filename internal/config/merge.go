package config

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/grassfps/grassfps/internal/jsonpatch"
)

// Merge combines configuration files (or every file below a directory) into
// a single document. Mappings merge recursively and category lists are
// concatenated in file order. Any other value present in more than one file is
// either taken from the last file or, with conflictError, reported.
func Merge(configFiles []string, conflictError bool) ([]byte, error) {

	var paths []string
	for _, f := range configFiles {
		if err := filepath.Walk(f, func(path string, fi fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return nil
			}
			paths = append(paths, path)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	docs := make([]map[string]any, 0, len(paths))
	for _, f := range paths {
		bs, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %v: %v", f, err)
		}
		var x map[string]any
		if err := yaml.Unmarshal(bs, &x); err != nil {
			return nil, fmt.Errorf("failed to unmarshal configuration file %v: %v", f, err)
		}
		docs = append(docs, x)
	}

	merged, err := merge(docs, "", conflictError)
	if err != nil {
		return nil, err
	}

	bs, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal merged configuration: %v", err)
	}

	return bs, nil
}

// appendPaths lists the document paths whose sequences are concatenated.
var appendPaths = []string{"/categories"}

func merge(docs []map[string]any, path string, conflictError bool) (map[string]any, error) {
	result := make(map[string]any)
	for _, doc := range docs {
		for _, key := range slices.Sorted(maps.Keys(doc)) { // Sort keys to ensure deterministic merge errors.
			value := doc[key]
			keyPath := path + "/" + key
			if existing, ok := result[key]; ok {
				if existingMap, ok1 := existing.(map[string]any); ok1 {
					if valueMap, ok2 := value.(map[string]any); ok2 {
						var err error
						result[key], err = merge([]map[string]any{existingMap, valueMap}, keyPath, conflictError)
						if err != nil {
							return nil, err
						}
						continue
					}
				}

				if slices.Contains(appendPaths, keyPath) {
					existingList, ok1 := existing.([]any)
					valueList, ok2 := value.([]any)
					if ok1 && ok2 {
						result[key] = slices.Concat(existingList, valueList)
						continue
					}
				}

				if conflictError && !reflect.DeepEqual(existing, value) {
					return nil, fmt.Errorf("conflict for config path %s", keyPath)
				}
			}
			result[key] = value
		}
	}
	return result, nil
}

// Patch applies an RFC 6902 patch (add, remove and replace only) to a merged
// configuration document. The result is JSON, which Parse accepts as well.
func Patch(doc []byte, patch []byte) ([]byte, error) {
	p, err := jsonpatch.Decode(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to decode configuration patch: %w", err)
	}

	bs, err := jsonpatch.ApplyYAML(p, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to patch configuration: %w", err)
	}
	return bs, nil
}
