// Package macro resolves named macros from configuration into actions.
package macro

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pleimann/marionette/internal/action"
	"github.com/pleimann/marionette/internal/config"
)

// ErrNotFound is returned by Lookup for an unknown name.
var ErrNotFound = errors.New("macro not found")

// Macro is a configured macro resolved to its action tree.
type Macro struct {
	Name        string
	Description string
	Action      action.Action
}

// Registry maps macro names to actions. It is safe for concurrent use and
// can be swapped to a new configuration with Reload.
type Registry struct {
	mu     sync.RWMutex
	macros map[string]Macro
}

// NewRegistry builds a registry from cfg.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	macros, err := build(cfg)
	if err != nil {
		return nil, err
	}
	return &Registry{macros: macros}, nil
}

func build(cfg *config.Config) (map[string]Macro, error) {
	macros := make(map[string]Macro, len(cfg.Macros))
	for _, m := range cfg.Macros {
		a, err := resolve(m)
		if err != nil {
			return nil, fmt.Errorf("macro %s: %w", m.Name, err)
		}
		macros[m.Name] = Macro{Name: m.Name, Description: m.Description, Action: a}
	}
	return macros, nil
}

func resolve(m config.Macro) (action.Action, error) {
	switch {
	case m.Action != nil:
		return m.Action.Action, nil

	case len(m.Keys) == 1:
		return action.ParseHotkey(m.Keys[0])

	case len(m.Keys) > 1:
		// a list of key strings is typed one chord after another
		steps := make([]action.Action, 0, len(m.Keys))
		for _, k := range m.Keys {
			hk, err := action.ParseHotkey(k)
			if err != nil {
				return nil, err
			}
			steps = append(steps, hk)
		}
		return action.Sequence{Actions: steps}, nil

	case m.Text != "":
		return action.TypeText{Text: m.Text}, nil
	}
	return nil, fmt.Errorf("no action, keys or text")
}

// Lookup returns the macro called name.
func (r *Registry) Lookup(name string) (Macro, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.macros[name]
	if !ok {
		return Macro{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return m, nil
}

// List returns every macro sorted by name.
func (r *Registry) List() []Macro {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Macro, 0, len(r.macros))
	for _, m := range r.macros {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reload replaces the registry's contents with cfg's macros. On error the
// previous contents are kept.
func (r *Registry) Reload(cfg *config.Config) error {
	macros, err := build(cfg)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.macros = macros
	r.mu.Unlock()
	return nil
}
