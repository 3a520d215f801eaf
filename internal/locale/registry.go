package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"html"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

// CommonNamespace holds strings shared by every domain (buttons, filter names).
const CommonNamespace = "common"

//go:embed dictionaries/*.yaml
var dictionariesFS embed.FS

// Registry holds one dictionary per namespace.
type Registry struct {
	namespaces map[string]Dictionary
}

func NewRegistry() *Registry {
	return &Registry{namespaces: make(map[string]Dictionary)}
}

// Register adds or replaces the dictionary for ns.
func (r *Registry) Register(ns string, dict Dictionary) {
	r.namespaces[ns] = dict
}

// Dictionary returns the dictionary registered under ns, or nil.
func (r *Registry) Dictionary(ns string) Dictionary {
	if r == nil {
		return nil
	}
	return r.namespaces[ns]
}

// Namespaces returns the registered namespace names in sorted order.
func (r *Registry) Namespaces() []string {
	names := make([]string, 0, len(r.namespaces))
	for ns := range r.namespaces {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}

// Resolve looks key up in namespace ns. Unknown namespaces resolve to key.
func (r *Registry) Resolve(ns, key, lang string) string {
	return Resolve(r.Dictionary(ns), key, lang)
}

// Namespace binds a Getter to ns, falling back to the common namespace
// before giving up and returning the key.
func (r *Registry) Namespace(ns string) Getter {
	return func(key, lang string) string {
		if v, ok := lookup(r.Dictionary(ns), key, lang); ok {
			return v
		}
		return r.Resolve(CommonNamespace, key, lang)
	}
}

// Embedded loads the dictionaries compiled into the binary.
func Embedded() (*Registry, error) {
	return LoadRegistry(dictionariesFS, "dictionaries")
}

// LoadRegistry reads every .yaml, .yml and .json file in dir as a namespace
// named after the file.
func LoadRegistry(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dictionaries: %w", err)
	}

	policy := bluemonday.StrictPolicy()
	reg := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := path.Ext(name)
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read dictionary %s: %w", name, err)
		}
		var dict Dictionary
		if ext == ".json" {
			err = json.Unmarshal(data, &dict)
		} else {
			err = yaml.Unmarshal(data, &dict)
		}
		if err != nil {
			return nil, fmt.Errorf("parse dictionary %s: %w", name, err)
		}
		sanitize(dict, policy)
		reg.Register(strings.TrimSuffix(name, ext), dict)
	}
	return reg, nil
}

// sanitize strips markup from every string in the tree and turns scalar
// leaves into strings. Dictionary values are rendered as plain text.
func sanitize(node map[string]any, policy *bluemonday.Policy) {
	for k, v := range node {
		switch val := v.(type) {
		case map[string]any:
			sanitize(val, policy)
		default:
			if s, ok := scalarText(val); ok {
				node[k] = strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
			}
		}
	}
}
