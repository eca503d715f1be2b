package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pocketpal/internal/core"
	"pocketpal/internal/storage"
)

// CategoryRegistry owns the category collection: unique names and the
// one-time default seed.
type CategoryRegistry struct {
	table *storage.Table[core.Category]
}

func NewCategoryRegistry(store *storage.Store) *CategoryRegistry {
	return &CategoryRegistry{table: store.Categories()}
}

// EnsureSeeded inserts core.DefaultCategories, in order, when the collection
// is empty. It returns how many categories were inserted.
func (r *CategoryRegistry) EnsureSeeded(ctx context.Context) (int, error) {
	existing, err := r.table.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("read categories: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, name := range core.DefaultCategories {
		if _, err := r.table.Insert(ctx, core.Category{Name: name}); err != nil {
			return i, fmt.Errorf("seed category %q: %w", name, err)
		}
	}

	slog.InfoContext(ctx, "Seeded default categories",
		"count", len(core.DefaultCategories))

	return len(core.DefaultCategories), nil
}

// AddCategory inserts a new category name. A name already present fails
// with core.ErrDuplicateCategory and leaves the collection unchanged.
func (r *CategoryRegistry) AddCategory(ctx context.Context, name string) (int64, error) {
	c := core.Category{Name: strings.TrimSpace(name)}
	if err := c.Validate(); err != nil {
		return 0, err
	}

	id, err := r.table.Insert(ctx, c)
	if err != nil {
		if errors.Is(err, storage.ErrUniqueViolation) {
			return 0, fmt.Errorf("%w: %q", core.ErrDuplicateCategory, c.Name)
		}
		return 0, fmt.Errorf("add category: %w", err)
	}

	slog.InfoContext(ctx, "Category added",
		"id", id,
		"name", c.Name)

	return id, nil
}

// List returns all categories in insertion order.
func (r *CategoryRegistry) List(ctx context.Context) ([]core.Category, error) {
	categories, err := r.table.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
