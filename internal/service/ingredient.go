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

// IngredientService handles ingredient listing and management. Like tags,
// ingredients are created implicitly through recipe writes.
type IngredientService struct {
	store  *sqlite.Store
	search *search.RecipeIndex
	logger *slog.Logger
}

// NewIngredientService creates a new ingredient service.
func NewIngredientService(store *sqlite.Store, searchIndex *search.RecipeIndex, logger *slog.Logger) *IngredientService {
	return &IngredientService{
		store:  store,
		search: searchIndex,
		logger: logger,
	}
}

// ListIngredients returns the user's ingredients ordered by name descending.
// With assignedOnly, only ingredients used by at least one recipe are
// returned.
func (s *IngredientService) ListIngredients(ctx context.Context, userID string, assignedOnly bool) ([]*domain.Ingredient, error) {
	ingredients, err := s.store.ListIngredients(ctx, userID, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

// UpdateIngredientRequest contains the new ingredient name.
type UpdateIngredientRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// UpdateIngredient renames one of the user's ingredients and reindexes the
// recipes using it.
func (s *IngredientService) UpdateIngredient(ctx context.Context, userID, ingredientID string, req UpdateIngredientRequest) (*domain.Ingredient, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	ing, err := s.store.GetIngredient(ctx, userID, ingredientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("ingredient not found")
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}

	ing.Name = strings.TrimSpace(req.Name)
	ing.Touch()

	if err := s.store.UpdateIngredient(ctx, ing); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("an ingredient with that name already exists")
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("ingredient not found")
		}
		return nil, fmt.Errorf("update ingredient: %w", err)
	}

	s.reindexUsing(ctx, userID, ingredientID)

	return ing, nil
}

// DeleteIngredient removes one of the user's ingredients, detaching it from
// all recipes.
func (s *IngredientService) DeleteIngredient(ctx context.Context, userID, ingredientID string) error {
	affected, err := s.store.ListRecipes(ctx, userID, store.RecipeFilter{IngredientIDs: []string{ingredientID}})
	if err != nil {
		return fmt.Errorf("list recipes using ingredient: %w", err)
	}

	if err := s.store.DeleteIngredient(ctx, userID, ingredientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("ingredient not found")
		}
		return fmt.Errorf("delete ingredient: %w", err)
	}

	s.reindexRecipes(ctx, userID, affected)

	if s.logger != nil {
		s.logger.Info("Ingredient deleted", "ingredient_id", ingredientID, "user_id", userID)
	}

	return nil
}

func (s *IngredientService) reindexUsing(ctx context.Context, userID, ingredientID string) {
	if s.search == nil {
		return
	}
	affected, err := s.store.ListRecipes(ctx, userID, store.RecipeFilter{IngredientIDs: []string{ingredientID}})
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to list recipes for reindex", "ingredient_id", ingredientID, "error", err)
		}
		return
	}
	s.reindexRecipes(ctx, userID, affected)
}

func (s *IngredientService) reindexRecipes(ctx context.Context, userID string, recipes []*domain.Recipe) {
	if s.search == nil {
		return
	}
	for _, stale := range recipes {
		fresh, err := s.store.GetRecipe(ctx, userID, stale.ID)
		if err != nil {
			continue
		}
		if err := s.search.IndexRecipe(search.NewRecipeDocument(fresh)); err != nil && s.logger != nil {
			s.logger.Warn("Failed to reindex recipe", "recipe_id", fresh.ID, "error", err)
		}
	}
}
