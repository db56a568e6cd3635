package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yeungho415/recipe/internal/domain"
	domainerrors "github.com/yeungho415/recipe/internal/errors"
	"github.com/yeungho415/recipe/internal/search"
	"github.com/yeungho415/recipe/internal/store"
	"github.com/yeungho415/recipe/internal/store/sqlite"
)

// TagService handles tag listing and management. Tags are created implicitly
// through recipe writes; this service covers the rest of their lifecycle.
type TagService struct {
	store  *sqlite.Store
	search *search.RecipeIndex
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *sqlite.Store, searchIndex *search.RecipeIndex, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		search: searchIndex,
		logger: logger,
	}
}

// ListTags returns the user's tags ordered by name descending.
// With assignedOnly, only tags attached to at least one recipe are returned.
func (s *TagService) ListTags(ctx context.Context, userID string, assignedOnly bool) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx, userID, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// UpdateTagRequest contains the new tag name.
type UpdateTagRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// UpdateTag renames one of the user's tags. Recipes carrying the tag are
// reindexed so search stays in sync with the new name.
func (s *TagService) UpdateTag(ctx context.Context, userID, tagID string, req UpdateTagRequest) (*domain.Tag, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	tag, err := s.store.GetTag(ctx, userID, tagID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}

	tag.Name = strings.TrimSpace(req.Name)
	tag.Touch()

	if err := s.store.UpdateTag(ctx, tag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a tag with that name already exists")
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}

	s.reindexTagged(ctx, userID, tagID)

	return tag, nil
}

// DeleteTag removes one of the user's tags, detaching it from all recipes.
func (s *TagService) DeleteTag(ctx context.Context, userID, tagID string) error {
	// Affected recipes must be collected before the cascade detaches them.
	affected, err := s.store.ListRecipes(ctx, userID, store.RecipeFilter{TagIDs: []string{tagID}})
	if err != nil {
		return fmt.Errorf("list tagged recipes: %w", err)
	}

	if err := s.store.DeleteTag(ctx, userID, tagID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("tag not found")
		}
		return fmt.Errorf("delete tag: %w", err)
	}

	s.reindexRecipes(ctx, userID, affected)

	if s.logger != nil {
		s.logger.Info("Tag deleted", "tag_id", tagID, "user_id", userID)
	}

	return nil
}

// reindexTagged refreshes the search documents of every recipe carrying the
// tag.
func (s *TagService) reindexTagged(ctx context.Context, userID, tagID string) {
	if s.search == nil {
		return
	}
	affected, err := s.store.ListRecipes(ctx, userID, store.RecipeFilter{TagIDs: []string{tagID}})
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to list recipes for reindex", "tag_id", tagID, "error", err)
		}
		return
	}
	s.reindexRecipes(ctx, userID, affected)
}

func (s *TagService) reindexRecipes(ctx context.Context, userID string, recipes []*domain.Recipe) {
	if s.search == nil {
		return
	}
	for _, stale := range recipes {
		// Re-read to pick up the post-mutation tag and ingredient lists.
		fresh, err := s.store.GetRecipe(ctx, userID, stale.ID)
		if err != nil {
			continue
		}
		if err := s.search.IndexRecipe(search.NewRecipeDocument(fresh)); err != nil && s.logger != nil {
			s.logger.Warn("Failed to reindex recipe", "recipe_id", fresh.ID, "error", err)
		}
	}
}
