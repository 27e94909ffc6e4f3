// Package template holds the ordered set of bank extraction rules used by
// the email parser.
package template

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hrejuh/upiwatch/internal/model"
	"github.com/hrejuh/upiwatch/internal/service"
)

// Registry is an immutable, priority-ordered collection of bank templates.
// It is read-only after construction and safe for concurrent use. Reloading
// configuration means building a new Registry, never patching this one.
type Registry struct {
	templates []model.BankTemplate
}

// NewRegistry validates the given templates and returns a registry ordered
// by descending priority. Ties preserve the input order.
func NewRegistry(templates []model.BankTemplate) (*Registry, error) {
	ordered := make([]model.BankTemplate, 0, len(templates))
	for i := range templates {
		if err := templates[i].Validate(); err != nil {
			return nil, fmt.Errorf("template %q: %w", templates[i].BankName, err)
		}
		ordered = append(ordered, templates[i])
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	return &Registry{templates: ordered}, nil
}

// Templates returns the templates in match order (highest priority first).
// Callers must not mutate the returned slice.
func (r *Registry) Templates() []model.BankTemplate {
	return r.templates
}

// Len returns the number of templates in the registry.
func (r *Registry) Len() int {
	return len(r.templates)
}

// Load builds a registry from persisted configuration, falling back to the
// built-in defaults when no templates have been persisted.
func Load(ctx context.Context, store service.Storage) (*Registry, error) {
	templates, err := store.GetBankTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank templates: %w", err)
	}

	if len(templates) == 0 {
		slog.Info("No persisted bank templates, using built-in defaults")
		return NewRegistry(Defaults())
	}

	slog.Info("Loaded bank templates", "count", len(templates))
	return NewRegistry(templates)
}
