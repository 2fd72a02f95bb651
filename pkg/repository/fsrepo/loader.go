package fsrepo

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blockkit/pkg/module"
)

// LoadFS walks fsys and decodes every JSON/YAML file as one module
// definition. A file without an id takes its name without the extension.
// Duplicate ids are an error. When fsys is nil the result is empty.
func LoadFS(fsys fs.FS) ([]module.Definition, error) {
	if fsys == nil {
		return nil, nil
	}

	seen := make(map[string]string)
	var defs []module.Definition
	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if p != "." && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !IsDefinitionFile(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("fsrepo: read %s: %w", p, err)
		}
		def, err := ParseDefinition(data, p)
		if err != nil {
			return err
		}
		if prev, exists := seen[def.ID]; exists {
			return fmt.Errorf("fsrepo: duplicate module %q (files %s and %s)", def.ID, prev, p)
		}
		seen[def.ID] = p
		defs = append(defs, def)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}

// ParseDefinition decodes one JSON or YAML definition document. source names
// the document in errors and supplies the default id.
func ParseDefinition(data []byte, source string) (module.Definition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return module.Definition{}, fmt.Errorf("fsrepo: file %s is empty", source)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = nil
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return module.Definition{}, fmt.Errorf("fsrepo: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}
	if raw == nil {
		return module.Definition{}, fmt.Errorf("fsrepo: file %s does not hold a mapping", source)
	}

	def, err := module.Decode(raw)
	if err != nil {
		return module.Definition{}, fmt.Errorf("fsrepo: decode %s: %w", source, err)
	}
	if strings.TrimSpace(def.ID) == "" {
		base := path.Base(source)
		def.ID = strings.TrimSuffix(base, path.Ext(base))
	}
	return def.WithDefaults(), nil
}

// IsDefinitionFile reports whether name has a definition file extension.
func IsDefinitionFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
