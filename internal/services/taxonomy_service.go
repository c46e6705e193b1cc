package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AliGanji14/cost-management/internal/cache"
	"github.com/AliGanji14/cost-management/internal/core"
	"github.com/AliGanji14/cost-management/internal/storage"
)

const (
	taxonomyCacheSize = 4
	taxonomyCacheTTL  = 5 * time.Minute

	// listCacheKey is the single key under which full list results live.
	listCacheKey = "all"
)

// TaxonomyService manages the labels expenses are organized by:
// categories (single-valued, also the scope of budgets) and tags
// (many-valued). Both are shared across users. Unfiltered list results
// are cached briefly; every mutation invalidates the affected cache.
type TaxonomyService struct {
	storage    *storage.Store
	categories *cache.LRUCache[[]core.Category]
	tags       *cache.LRUCache[[]core.Tag]
}

func NewTaxonomyService(storage *storage.Store) *TaxonomyService {
	return &TaxonomyService{
		storage:    storage,
		categories: cache.NewLRUCache[[]core.Category](taxonomyCacheSize, taxonomyCacheTTL),
		tags:       cache.NewLRUCache[[]core.Tag](taxonomyCacheSize, taxonomyCacheTTL),
	}
}

// Caches exposes the service's caches for periodic expiry cleanup.
func (s *TaxonomyService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.categories, s.tags}
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.storage.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.categories.Delete(listCacheKey)

	slog.InfoContext(ctx, "Category created",
		"category_id", created.ID,
		"name", created.Name)
	return created, nil
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.storage.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories, or those whose name contains q.
// Only the unfiltered list is cached.
func (s *TaxonomyService) ListCategories(ctx context.Context, q string) ([]core.Category, error) {
	if q == "" {
		if cached, ok := s.categories.Get(listCacheKey); ok {
			return cached, nil
		}
	}

	categories, err := s.storage.ListCategories(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if q == "" {
		s.categories.Set(listCacheKey, categories)
	}
	return categories, nil
}

func (s *TaxonomyService) UpdateCategory(ctx context.Context, id int64, u storage.CategoryUpdate) (core.Category, error) {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return core.Category{}, core.ErrEmptyName
	}

	updated, err := s.storage.UpdateCategory(ctx, id, u)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	s.categories.Delete(listCacheKey)
	return updated, nil
}

// DeleteCategory removes the category. Expenses referencing it become
// uncategorized and budgets scoped to it are dropped.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.storage.DeleteCategory(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	s.categories.Delete(listCacheKey)
	if deleted {
		slog.InfoContext(ctx, "Category deleted", "category_id", id)
	}
	return deleted, nil
}

func (s *TaxonomyService) CreateTag(ctx context.Context, t core.Tag) (core.Tag, error) {
	if err := t.Validate(); err != nil {
		return core.Tag{}, err
	}

	created, err := s.storage.CreateTag(ctx, t)
	if err != nil {
		return core.Tag{}, fmt.Errorf("create tag: %w", err)
	}
	s.tags.Delete(listCacheKey)

	slog.InfoContext(ctx, "Tag created",
		"tag_id", created.ID,
		"name", created.Name)
	return created, nil
}

func (s *TaxonomyService) GetTag(ctx context.Context, id int64) (core.Tag, error) {
	t, err := s.storage.GetTag(ctx, id)
	if err != nil {
		return core.Tag{}, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

// ListTags returns all tags, or those whose name contains q. Only the
// unfiltered list is cached.
func (s *TaxonomyService) ListTags(ctx context.Context, q string) ([]core.Tag, error) {
	if q == "" {
		if cached, ok := s.tags.Get(listCacheKey); ok {
			return cached, nil
		}
	}

	tags, err := s.storage.ListTags(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if q == "" {
		s.tags.Set(listCacheKey, tags)
	}
	return tags, nil
}

func (s *TaxonomyService) UpdateTag(ctx context.Context, id int64, u storage.TagUpdate) (core.Tag, error) {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return core.Tag{}, core.ErrEmptyName
	}

	updated, err := s.storage.UpdateTag(ctx, id, u)
	if err != nil {
		return core.Tag{}, fmt.Errorf("update tag: %w", err)
	}
	s.tags.Delete(listCacheKey)
	return updated, nil
}

// DeleteTag removes the tag and detaches it from every expense.
func (s *TaxonomyService) DeleteTag(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.storage.DeleteTag(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	s.tags.Delete(listCacheKey)
	if deleted {
		slog.InfoContext(ctx, "Tag deleted", "tag_id", id)
	}
	return deleted, nil
}
