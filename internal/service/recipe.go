package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yeungho415/recipe/internal/domain"
	domainerrors "github.com/yeungho415/recipe/internal/errors"
	"github.com/yeungho415/recipe/internal/id"
	"github.com/yeungho415/recipe/internal/media/images"
	"github.com/yeungho415/recipe/internal/search"
	"github.com/yeungho415/recipe/internal/store"
	"github.com/yeungho415/recipe/internal/store/sqlite"
)

// MaxImageSize is the maximum recipe image upload size in bytes (10MB).
const MaxImageSize = 10 * 1024 * 1024

// RecipeService handles recipe CRUD, nested tag/ingredient writes, image
// uploads, and search index maintenance. Every operation is scoped to the
// calling user.
type RecipeService struct {
	store  *sqlite.Store
	images *images.Storage
	search *search.RecipeIndex
	logger *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(
	store *sqlite.Store,
	imageStorage *images.Storage,
	searchIndex *search.RecipeIndex,
	logger *slog.Logger,
) *RecipeService {
	return &RecipeService{
		store:  store,
		images: imageStorage,
		search: searchIndex,
		logger: logger,
	}
}

// TagInput names a tag to attach to a recipe. Tags are created on first use
// and reused by name afterwards.
type TagInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// IngredientInput names an ingredient to attach to a recipe.
type IngredientInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateRecipeRequest contains new recipe data. Price is a decimal string
// such as "5.25".
type CreateRecipeRequest struct {
	Title       string            `json:"title" validate:"required,max=255"`
	TimeMinutes int               `json:"time_minutes" validate:"required,gt=0"`
	Price       string            `json:"price" validate:"required"`
	Description string            `json:"description,omitempty"`
	Link        string            `json:"link,omitempty" validate:"omitempty,max=255"`
	Tags        []TagInput        `json:"tags,omitempty" validate:"omitempty,dive"`
	Ingredients []IngredientInput `json:"ingredients,omitempty" validate:"omitempty,dive"`
}

// CreateRecipe creates a recipe with its nested tags and ingredients.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID string, req CreateRecipeRequest) (*domain.Recipe, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	price, err := domain.ParsePrice(req.Price)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"price": err.Error()})
	}

	recipeID, err := id.Generate("recipe")
	if err != nil {
		return nil, fmt.Errorf("generate recipe ID: %w", err)
	}

	recipe := &domain.Recipe{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		TimeMinutes: req.TimeMinutes,
		Price:       price,
		Link:        req.Link,
	}
	recipe.ID = recipeID
	recipe.InitTimestamps()

	if err := s.store.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	recipe.Tags, err = s.store.ReplaceRecipeTags(ctx, userID, recipeID, tagNames(req.Tags))
	if err != nil {
		return nil, fmt.Errorf("attach tags: %w", err)
	}

	recipe.Ingredients, err = s.store.ReplaceRecipeIngredients(ctx, userID, recipeID, ingredientNames(req.Ingredients))
	if err != nil {
		return nil, fmt.Errorf("attach ingredients: %w", err)
	}

	s.indexRecipe(recipe)

	if s.logger != nil {
		s.logger.Info("Recipe created", "recipe_id", recipeID, "user_id", userID)
	}

	return recipe, nil
}

// ListRecipes returns the user's recipes, newest first, optionally filtered
// by tag and ingredient IDs.
func (s *RecipeService) ListRecipes(ctx context.Context, userID string, filter store.RecipeFilter) ([]*domain.Recipe, error) {
	recipes, err := s.store.ListRecipes(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe returns one of the user's recipes with tags and ingredients.
func (s *RecipeService) GetRecipe(ctx context.Context, userID, recipeID string) (*domain.Recipe, error) {
	recipe, err := s.store.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return recipe, nil
}

// UpdateRecipeRequest contains optional fields to update. Nil fields are
// left unchanged. A non-nil empty Tags or Ingredients slice detaches
// everything.
type UpdateRecipeRequest struct {
	Title       *string            `json:"title,omitempty" validate:"omitempty,max=255"`
	TimeMinutes *int               `json:"time_minutes,omitempty" validate:"omitempty,gt=0"`
	Price       *string            `json:"price,omitempty"`
	Description *string            `json:"description,omitempty"`
	Link        *string            `json:"link,omitempty" validate:"omitempty,max=255"`
	Tags        *[]TagInput        `json:"tags,omitempty" validate:"omitempty,dive"`
	Ingredients *[]IngredientInput `json:"ingredients,omitempty" validate:"omitempty,dive"`
}

// UpdateRecipe applies a partial update to one of the user's recipes.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID string, req UpdateRecipeRequest) (*domain.Recipe, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	recipe, err := s.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"title": "is required"})
		}
		recipe.Title = title
	}
	if req.TimeMinutes != nil {
		recipe.TimeMinutes = *req.TimeMinutes
	}
	if req.Price != nil {
		price, err := domain.ParsePrice(*req.Price)
		if err != nil {
			return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"price": err.Error()})
		}
		recipe.Price = price
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.Link != nil {
		recipe.Link = *req.Link
	}

	recipe.Touch()

	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if req.Tags != nil {
		recipe.Tags, err = s.store.ReplaceRecipeTags(ctx, userID, recipeID, tagNames(*req.Tags))
		if err != nil {
			return nil, fmt.Errorf("replace tags: %w", err)
		}
	}

	if req.Ingredients != nil {
		recipe.Ingredients, err = s.store.ReplaceRecipeIngredients(ctx, userID, recipeID, ingredientNames(*req.Ingredients))
		if err != nil {
			return nil, fmt.Errorf("replace ingredients: %w", err)
		}
	}

	s.indexRecipe(recipe)

	return recipe, nil
}

// DeleteRecipe removes one of the user's recipes, its image file, and its
// search index entry. Detached tags and ingredients survive.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID string) error {
	recipe, err := s.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteRecipe(ctx, userID, recipeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("recipe not found")
		}
		return fmt.Errorf("delete recipe: %w", err)
	}

	if recipe.HasImage() {
		if err := s.images.Delete(recipe.ImagePath); err != nil && s.logger != nil {
			s.logger.Warn("Failed to delete recipe image", "recipe_id", recipeID, "error", err)
		}
	}

	if s.search != nil {
		if err := s.search.DeleteRecipe(recipeID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to remove recipe from search index", "recipe_id", recipeID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Recipe deleted", "recipe_id", recipeID, "user_id", userID)
	}

	return nil
}

// UploadImage validates, stores, and attaches an image to one of the user's
// recipes, replacing any previous image. The stored filename is randomized;
// only the original extension is kept.
func (s *RecipeService) UploadImage(ctx context.Context, userID, recipeID string, data []byte, filename string) (*domain.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"image": "no file was submitted"})
	}
	if len(data) > MaxImageSize {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"image": fmt.Sprintf("file too large, max %d bytes", MaxImageSize)})
	}

	img, _, err := images.Decode(data)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"image": "upload a valid image"})
	}

	blurHash, err := images.ComputeBlurHash(img)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to compute blurhash", "recipe_id", recipeID, "error", err)
		}
		blurHash = ""
	}

	stored, err := s.images.Save(data, filename)
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	previous := recipe.ImagePath
	recipe.ImagePath = stored
	recipe.ImageBlurHash = blurHash
	recipe.Touch()

	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		// Roll back the orphaned file
		_ = s.images.Delete(stored)
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if previous != "" && previous != stored {
		if err := s.images.Delete(previous); err != nil && s.logger != nil {
			s.logger.Warn("Failed to delete previous image", "recipe_id", recipeID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Recipe image uploaded", "recipe_id", recipeID, "file", stored)
	}

	return recipe, nil
}

// GetImage returns the stored image bytes for one of the user's recipes,
// along with the stored filename.
func (s *RecipeService) GetImage(ctx context.Context, userID, recipeID string) ([]byte, string, error) {
	recipe, err := s.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, "", err
	}

	if !recipe.HasImage() {
		return nil, "", domainerrors.NotFound("recipe has no image")
	}

	data, err := s.images.Get(recipe.ImagePath)
	if err != nil {
		return nil, "", domainerrors.NotFound("image not found").WithCause(err)
	}

	return data, recipe.ImagePath, nil
}

// Search runs a full-text query over the user's recipes.
func (s *RecipeService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.search == nil {
		return nil, domainerrors.Internal("search is not available")
	}
	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	return result, nil
}

// ReindexAll rebuilds the search index from the database. Used at startup
// after a mapping change and by the tag/ingredient services after renames.
func (s *RecipeService) ReindexAll(ctx context.Context) (int, error) {
	if s.search == nil {
		return 0, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	count := 0
	for _, user := range users {
		recipes, err := s.store.ListRecipes(ctx, user.ID, store.RecipeFilter{})
		if err != nil {
			return count, fmt.Errorf("list recipes for %s: %w", user.ID, err)
		}
		for _, recipe := range recipes {
			if err := s.search.IndexRecipe(search.NewRecipeDocument(recipe)); err != nil {
				return count, fmt.Errorf("index recipe %s: %w", recipe.ID, err)
			}
			count++
		}
	}

	return count, nil
}

// indexRecipe updates the search index, logging instead of failing the
// request when indexing goes wrong.
func (s *RecipeService) indexRecipe(recipe *domain.Recipe) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexRecipe(search.NewRecipeDocument(recipe)); err != nil && s.logger != nil {
		s.logger.Warn("Failed to index recipe", "recipe_id", recipe.ID, "error", err)
	}
}

func tagNames(inputs []TagInput) []string {
	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		names = append(names, in.Name)
	}
	return names
}

func ingredientNames(inputs []IngredientInput) []string {
	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		names = append(names, in.Name)
	}
	return names
}
