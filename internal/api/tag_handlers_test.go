package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTags(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	resp := ts.api.Get("/api/recipe/tags", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListTagsResponse
	decodeBody(t, resp.Body.Bytes(), &list)
	assert.Empty(t, list.Tags)

	createTestRecipe(t, ts, token, map[string]any{
		"title": "Dish", "time_minutes": 5, "price": "1.00",
		"tags": []map[string]any{{"name": "Apple"}, {"name": "Banana"}},
	})

	resp = ts.api.Get("/api/recipe/tags", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	decodeBody(t, resp.Body.Bytes(), &list)
	require.Len(t, list.Tags, 2)
	// Name descending
	assert.Equal(t, "Banana", list.Tags[0].Name)
	assert.Equal(t, "Apple", list.Tags[1].Name)
}

func TestListTags_AssignedOnly(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	recipe := createTestRecipe(t, ts, token, map[string]any{
		"title": "Dish", "time_minutes": 5, "price": "1.00",
		"tags": []map[string]any{{"name": "Orphaned"}},
	})

	// Detach the tag, leaving it unassigned
	resp := ts.api.Patch("/api/recipe/recipes/"+recipe.ID,
		map[string]any{"tags": []map[string]any{}},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/recipe/tags?assigned_only=true", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListTagsResponse
	decodeBody(t, resp.Body.Bytes(), &list)
	assert.Empty(t, list.Tags)

	resp = ts.api.Get("/api/recipe/tags", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp.Body.Bytes(), &list)
	assert.Len(t, list.Tags, 1)
}

func TestUpdateTag(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	recipe := createTestRecipe(t, ts, token, map[string]any{
		"title": "Dish", "time_minutes": 5, "price": "1.00",
		"tags": []map[string]any{{"name": "Dessert"}},
	})

	resp := ts.api.Patch("/api/recipe/tags/"+recipe.Tags[0].ID,
		map[string]any{"name": "Pudding"},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var tag NamedItemResponse
	decodeBody(t, resp.Body.Bytes(), &tag)
	assert.Equal(t, "Pudding", tag.Name)
}

func TestDeleteTag(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	recipe := createTestRecipe(t, ts, token, map[string]any{
		"title": "Dish", "time_minutes": 5, "price": "1.00",
		"tags": []map[string]any{{"name": "Doomed"}},
	})

	resp := ts.api.Delete("/api/recipe/tags/"+recipe.Tags[0].ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Delete("/api/recipe/tags/"+recipe.Tags[0].ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestIngredientEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	recipe := createTestRecipe(t, ts, token, map[string]any{
		"title": "Salad", "time_minutes": 5, "price": "1.00",
		"ingredients": []map[string]any{{"name": "Cucumber"}},
	})

	resp := ts.api.Get("/api/recipe/ingredients", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListIngredientsResponse
	decodeBody(t, resp.Body.Bytes(), &list)
	require.Len(t, list.Ingredients, 1)

	resp = ts.api.Patch("/api/recipe/ingredients/"+recipe.Ingredients[0].ID,
		map[string]any{"name": "Pickle"},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var ing NamedItemResponse
	decodeBody(t, resp.Body.Bytes(), &ing)
	assert.Equal(t, "Pickle", ing.Name)

	resp = ts.api.Delete("/api/recipe/ingredients/"+recipe.Ingredients[0].ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/recipe/ingredients", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp.Body.Bytes(), &list)
	assert.Empty(t, list.Ingredients)
}

func TestTagEndpoints_ForeignUser(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createTestUser(t, "alice@example.com")
	bob := ts.createTestUser(t, "bob@example.com")

	recipe := createTestRecipe(t, ts, alice, map[string]any{
		"title": "Dish", "time_minutes": 5, "price": "1.00",
		"tags": []map[string]any{{"name": "Private"}},
	})

	resp := ts.api.Patch("/api/recipe/tags/"+recipe.Tags[0].ID,
		map[string]any{"name": "Stolen"},
		"Authorization: Bearer "+bob)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/recipe/tags/"+recipe.Tags[0].ID, "Authorization: Bearer "+bob)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
