package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yeungho415/recipe/internal/service"
)

func (s *Server) registerIngredientRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listIngredients",
		Method:      http.MethodGet,
		Path:        "/api/recipe/ingredients",
		Summary:     "List ingredients",
		Description: "Returns the current user's ingredients, name descending",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListIngredients)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateIngredient",
		Method:      http.MethodPatch,
		Path:        "/api/recipe/ingredients/{id}",
		Summary:     "Update ingredient",
		Description: "Renames an ingredient",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteIngredient",
		Method:        http.MethodDelete,
		Path:          "/api/recipe/ingredients/{id}",
		Summary:       "Delete ingredient",
		Description:   "Deletes an ingredient, detaching it from all recipes",
		Tags:          []string{"Ingredients"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteIngredient)
}

// === DTOs ===

// ListIngredientsInput contains parameters for listing ingredients.
type ListIngredientsInput struct {
	Authorization string `header:"Authorization"`
	AssignedOnly  bool   `query:"assigned_only" doc:"Only ingredients used by at least one recipe"`
}

// ListIngredientsResponse contains a list of ingredients.
type ListIngredientsResponse struct {
	Ingredients []NamedItemResponse `json:"ingredients" doc:"List of ingredients"`
}

// ListIngredientsOutput wraps the list response for Huma.
type ListIngredientsOutput struct {
	Body ListIngredientsResponse
}

// UpdateIngredientRequest is the request body for renaming an ingredient.
type UpdateIngredientRequest struct {
	Name string `json:"name" doc:"New ingredient name"`
}

// UpdateIngredientInput wraps the rename request for Huma.
type UpdateIngredientInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Ingredient ID"`
	Body          UpdateIngredientRequest
}

// IngredientOutput wraps a single ingredient for Huma.
type IngredientOutput struct {
	Body NamedItemResponse
}

// DeleteIngredientInput contains parameters for deleting an ingredient.
type DeleteIngredientInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Ingredient ID"`
}

// DeleteIngredientOutput is an empty response for Huma.
type DeleteIngredientOutput struct{}

// === Handlers ===

func (s *Server) handleListIngredients(ctx context.Context, input *ListIngredientsInput) (*ListIngredientsOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	ingredients, err := s.services.Ingredient.ListIngredients(ctx, user.ID, input.AssignedOnly)
	if err != nil {
		return nil, err
	}

	return &ListIngredientsOutput{Body: ListIngredientsResponse{Ingredients: ingredientItems(ingredients)}}, nil
}

func (s *Server) handleUpdateIngredient(ctx context.Context, input *UpdateIngredientInput) (*IngredientOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	ing, err := s.services.Ingredient.UpdateIngredient(ctx, user.ID, input.ID, service.UpdateIngredientRequest{
		Name: input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &IngredientOutput{Body: NamedItemResponse{ID: ing.ID, Name: ing.Name}}, nil
}

func (s *Server) handleDeleteIngredient(ctx context.Context, input *DeleteIngredientInput) (*DeleteIngredientOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Ingredient.DeleteIngredient(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}

	return &DeleteIngredientOutput{}, nil
}
