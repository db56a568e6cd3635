package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yeungho415/recipe/internal/domain"
	"github.com/yeungho415/recipe/internal/search"
	"github.com/yeungho415/recipe/internal/service"
	"github.com/yeungho415/recipe/internal/store"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/api/recipe/recipes",
		Summary:     "List recipes",
		Description: "Returns the current user's recipes, newest first",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecipe",
		Method:        http.MethodPost,
		Path:          "/api/recipe/recipes",
		Summary:       "Create recipe",
		Description:   "Creates a recipe with nested tags and ingredients",
		Tags:          []string{"Recipes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchRecipes",
		Method:      http.MethodGet,
		Path:        "/api/recipe/recipes/search",
		Summary:     "Search recipes",
		Description: "Full-text search over the current user's recipes",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/recipe/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns a recipe by ID",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        "/api/recipe/recipes/{id}",
		Summary:     "Update recipe",
		Description: "Applies a partial update to a recipe",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecipe",
		Method:        http.MethodDelete,
		Path:          "/api/recipe/recipes/{id}",
		Summary:       "Delete recipe",
		Description:   "Deletes a recipe, keeping its tags and ingredients",
		Tags:          []string{"Recipes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteRecipe)
}

// === DTOs ===

// NamedItemResponse is a tag or ingredient in API responses.
type NamedItemResponse struct {
	ID   string `json:"id" doc:"Item ID"`
	Name string `json:"name" doc:"Item name"`
}

// NamedItemRequest names a tag or ingredient to attach.
type NamedItemRequest struct {
	Name string `json:"name" doc:"Item name"`
}

// RecipeSummary contains recipe data for list views. Description is omitted;
// fetch the recipe detail for it.
type RecipeSummary struct {
	ID            string              `json:"id" doc:"Recipe ID"`
	Title         string              `json:"title" doc:"Recipe title"`
	TimeMinutes   int                 `json:"time_minutes" doc:"Preparation time in minutes"`
	Price         string              `json:"price" doc:"Price as a decimal string"`
	Link          string              `json:"link,omitempty" doc:"External link"`
	Tags          []NamedItemResponse `json:"tags" doc:"Attached tags"`
	Ingredients   []NamedItemResponse `json:"ingredients" doc:"Attached ingredients"`
	ImagePath     string              `json:"image_path,omitempty" doc:"Stored image filename"`
	ImageBlurHash string              `json:"image_blurhash,omitempty" doc:"BlurHash placeholder"`
}

// RecipeDetail contains full recipe data.
type RecipeDetail struct {
	RecipeSummary
	Description string    `json:"description,omitempty" doc:"Recipe description"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

func tagItems(tags []*domain.Tag) []NamedItemResponse {
	resp := make([]NamedItemResponse, len(tags))
	for i, t := range tags {
		resp[i] = NamedItemResponse{ID: t.ID, Name: t.Name}
	}
	return resp
}

func ingredientItems(ingredients []*domain.Ingredient) []NamedItemResponse {
	resp := make([]NamedItemResponse, len(ingredients))
	for i, ing := range ingredients {
		resp[i] = NamedItemResponse{ID: ing.ID, Name: ing.Name}
	}
	return resp
}

func newRecipeSummary(r *domain.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:            r.ID,
		Title:         r.Title,
		TimeMinutes:   r.TimeMinutes,
		Price:         r.Price.String(),
		Link:          r.Link,
		Tags:          tagItems(r.Tags),
		Ingredients:   ingredientItems(r.Ingredients),
		ImagePath:     r.ImagePath,
		ImageBlurHash: r.ImageBlurHash,
	}
}

func newRecipeDetail(r *domain.Recipe) RecipeDetail {
	return RecipeDetail{
		RecipeSummary: newRecipeSummary(r),
		Description:   r.Description,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ListRecipesInput contains parameters for listing recipes.
type ListRecipesInput struct {
	Authorization string `header:"Authorization"`
	Tags          string `query:"tags" doc:"Comma-separated tag IDs to filter by"`
	Ingredients   string `query:"ingredients" doc:"Comma-separated ingredient IDs to filter by"`
}

// ListRecipesResponse contains a list of recipes.
type ListRecipesResponse struct {
	Recipes []RecipeSummary `json:"recipes" doc:"List of recipes, newest first"`
}

// ListRecipesOutput wraps the list response for Huma.
type ListRecipesOutput struct {
	Body ListRecipesResponse
}

// CreateRecipeRequest is the request body for creating a recipe.
type CreateRecipeRequest struct {
	Title       string             `json:"title" doc:"Recipe title"`
	TimeMinutes int                `json:"time_minutes" doc:"Preparation time in minutes"`
	Price       string             `json:"price" doc:"Price as a decimal string, e.g. 5.25"`
	Description string             `json:"description,omitempty" doc:"Recipe description"`
	Link        string             `json:"link,omitempty" doc:"External link"`
	Tags        []NamedItemRequest `json:"tags,omitempty" doc:"Tags to attach, created on first use"`
	Ingredients []NamedItemRequest `json:"ingredients,omitempty" doc:"Ingredients to attach, created on first use"`
}

// CreateRecipeInput wraps the create request for Huma.
type CreateRecipeInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateRecipeRequest
}

// RecipeOutput wraps the recipe detail for Huma.
type RecipeOutput struct {
	Body RecipeDetail
}

// GetRecipeInput contains parameters for getting a recipe.
type GetRecipeInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Recipe ID"`
}

// UpdateRecipeRequest is the request body for updating a recipe. Omitted
// fields are left unchanged; an empty tags or ingredients list detaches
// everything.
type UpdateRecipeRequest struct {
	Title       *string             `json:"title,omitempty" doc:"New title"`
	TimeMinutes *int                `json:"time_minutes,omitempty" doc:"New preparation time"`
	Price       *string             `json:"price,omitempty" doc:"New price"`
	Description *string             `json:"description,omitempty" doc:"New description"`
	Link        *string             `json:"link,omitempty" doc:"New link"`
	Tags        *[]NamedItemRequest `json:"tags,omitempty" doc:"Replacement tag list"`
	Ingredients *[]NamedItemRequest `json:"ingredients,omitempty" doc:"Replacement ingredient list"`
}

// UpdateRecipeInput wraps the update request for Huma.
type UpdateRecipeInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Recipe ID"`
	Body          UpdateRecipeRequest
}

// DeleteRecipeInput contains parameters for deleting a recipe.
type DeleteRecipeInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Recipe ID"`
}

// DeleteRecipeOutput is an empty response for Huma.
type DeleteRecipeOutput struct{}

// SearchRecipesInput contains full-text search parameters.
type SearchRecipesInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search query; empty lists everything"`
	Limit         int    `query:"limit" doc:"Maximum hits to return, default 20"`
	Offset        int    `query:"offset" doc:"Hits to skip for pagination"`
}

// SearchRecipesOutput wraps the search result for Huma.
type SearchRecipesOutput struct {
	Body search.Result
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, input *ListRecipesInput) (*ListRecipesOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	filter := store.RecipeFilter{
		TagIDs:        splitIDList(input.Tags),
		IngredientIDs: splitIDList(input.Ingredients),
	}

	recipes, err := s.services.Recipe.ListRecipes(ctx, user.ID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]RecipeSummary, len(recipes))
	for i, r := range recipes {
		resp[i] = newRecipeSummary(r)
	}

	return &ListRecipesOutput{Body: ListRecipesResponse{Recipes: resp}}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.CreateRecipe(ctx, user.ID, service.CreateRecipeRequest{
		Title:       input.Body.Title,
		TimeMinutes: input.Body.TimeMinutes,
		Price:       input.Body.Price,
		Description: input.Body.Description,
		Link:        input.Body.Link,
		Tags:        toTagInputs(input.Body.Tags),
		Ingredients: toIngredientInputs(input.Body.Ingredients),
	})
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: newRecipeDetail(recipe)}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *GetRecipeInput) (*RecipeOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.GetRecipe(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: newRecipeDetail(recipe)}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	req := service.UpdateRecipeRequest{
		Title:       input.Body.Title,
		TimeMinutes: input.Body.TimeMinutes,
		Price:       input.Body.Price,
		Description: input.Body.Description,
		Link:        input.Body.Link,
	}
	if input.Body.Tags != nil {
		tags := toTagInputs(*input.Body.Tags)
		req.Tags = &tags
	}
	if input.Body.Ingredients != nil {
		ingredients := toIngredientInputs(*input.Body.Ingredients)
		req.Ingredients = &ingredients
	}

	recipe, err := s.services.Recipe.UpdateRecipe(ctx, user.ID, input.ID, req)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: newRecipeDetail(recipe)}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *DeleteRecipeInput) (*DeleteRecipeOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recipe.DeleteRecipe(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}

	return &DeleteRecipeOutput{}, nil
}

func (s *Server) handleSearchRecipes(ctx context.Context, input *SearchRecipesInput) (*SearchRecipesOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Recipe.Search(ctx, search.Params{
		UserID: user.ID,
		Query:  input.Query,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &SearchRecipesOutput{Body: *result}, nil
}

// === Helpers ===

// splitIDList parses a comma-separated ID list, dropping empty entries.
func splitIDList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func toTagInputs(items []NamedItemRequest) []service.TagInput {
	inputs := make([]service.TagInput, len(items))
	for i, item := range items {
		inputs[i] = service.TagInput{Name: item.Name}
	}
	return inputs
}

func toIngredientInputs(items []NamedItemRequest) []service.IngredientInput {
	inputs := make([]service.IngredientInput, len(items))
	for i, item := range items {
		inputs[i] = service.IngredientInput{Name: item.Name}
	}
	return inputs
}
