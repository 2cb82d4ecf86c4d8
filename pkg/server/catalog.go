package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-qform/pkg/questionnaire"
)

// ErrUnknownQuestionnaire is returned for names the catalog does not hold.
var ErrUnknownQuestionnaire = errors.New("server: unknown questionnaire")

// Catalog holds the definitions sessions can be started from.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]questionnaire.Definition
}

// NewCatalog registers defs under their names.
func NewCatalog(defs ...questionnaire.Definition) *Catalog {
	c := &Catalog{defs: make(map[string]questionnaire.Definition, len(defs))}
	for _, def := range defs {
		c.Add("", def)
	}
	return c
}

// LoadCatalog reads every .yaml, .yml and .json definition in fsys. Entries
// are keyed by the definition name, or the file stem when it has none.
func LoadCatalog(ctx context.Context, fsys fs.FS) (*Catalog, error) {
	if fsys == nil {
		return nil, errors.New("server: catalog filesystem is nil")
	}
	loader := questionnaire.NewLoader(questionnaire.WithFileSystem(fsys))
	catalog := NewCatalog()

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(name))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}
		def, err := loader.LoadDefinition(ctx, questionnaire.SourceFromFS(name))
		if err != nil {
			return fmt.Errorf("server: load %s: %w", name, err)
		}
		catalog.Add(strings.TrimSuffix(path.Base(name), path.Ext(name)), def)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Add registers def. The definition name wins over fallback.
func (c *Catalog) Add(fallback string, def questionnaire.Definition) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		name = strings.TrimSpace(fallback)
	}
	if name == "" {
		return
	}
	c.mu.Lock()
	c.defs[name] = def
	c.mu.Unlock()
}

// Names lists the registered names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the definition registered under name.
func (c *Catalog) Definition(name string) (questionnaire.Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[strings.TrimSpace(name)]
	if !ok {
		return questionnaire.Definition{}, fmt.Errorf("%w: %q", ErrUnknownQuestionnaire, name)
	}
	return def, nil
}
