package api

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRecipe(t *testing.T, ts *testServer, token string, body map[string]any) RecipeDetail {
	t.Helper()
	resp := ts.api.Post("/api/recipe/recipes", body, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var recipe RecipeDetail
	decodeBody(t, resp.Body.Bytes(), &recipe)
	return recipe
}

func TestCreateRecipe_WithNestedTagsAndIngredients(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	recipe := createTestRecipe(t, ts, token, map[string]any{
		"title":        "Thai Curry",
		"time_minutes": 30,
		"price":        "5.25",
		"description":  "Spicy and quick",
		"tags":         []map[string]any{{"name": "Thai"}, {"name": "Dinner"}},
		"ingredients":  []map[string]any{{"name": "Rice"}},
	})

	assert.Equal(t, "Thai Curry", recipe.Title)
	assert.Equal(t, "5.25", recipe.Price)
	assert.Equal(t, "Spicy and quick", recipe.Description)
	assert.Len(t, recipe.Tags, 2)
	assert.Len(t, recipe.Ingredients, 1)
}

func TestCreateRecipe_InvalidPrice(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	resp := ts.api.Post("/api/recipe/recipes", map[string]any{
		"title":        "Broken",
		"time_minutes": 5,
		"price":        "5.123",
	}, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestListRecipes_OmitsDescription(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	createTestRecipe(t, ts, token, map[string]any{
		"title": "First", "time_minutes": 5, "price": "1.00",
		"description": "hidden in lists",
	})
	createTestRecipe(t, ts, token, map[string]any{
		"title": "Second", "time_minutes": 5, "price": "1.00",
	})

	resp := ts.api.Get("/api/recipe/recipes", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListRecipesResponse
	decodeBody(t, resp.Body.Bytes(), &list)
	require.Len(t, list.Recipes, 2)
	// Newest first
	assert.Equal(t, "Second", list.Recipes[0].Title)
	assert.NotContains(t, resp.Body.String(), "hidden in lists")
}

func TestListRecipes_ScopedToUser(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createTestUser(t, "alice@example.com")
	bob := ts.createTestUser(t, "bob@example.com")

	createTestRecipe(t, ts, alice, map[string]any{
		"title": "Alice's Secret", "time_minutes": 5, "price": "1.00",
	})

	resp := ts.api.Get("/api/recipe/recipes", "Authorization: Bearer "+bob)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListRecipesResponse
	decodeBody(t, resp.Body.Bytes(), &list)
	assert.Empty(t, list.Recipes)
}

func TestListRecipes_FilterByTag(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	tagged := createTestRecipe(t, ts, token, map[string]any{
		"title": "Tagged", "time_minutes": 5, "price": "1.00",
		"tags": []map[string]any{{"name": "Quick"}},
	})
	createTestRecipe(t, ts, token, map[string]any{
		"title": "Plain", "time_minutes": 5, "price": "1.00",
	})

	resp := ts.api.Get("/api/recipe/recipes?tags="+tagged.Tags[0].ID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListRecipesResponse
	decodeBody(t, resp.Body.Bytes(), &list)
	require.Len(t, list.Recipes, 1)
	assert.Equal(t, tagged.ID, list.Recipes[0].ID)
}

func TestGetRecipe_ForeignUser(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createTestUser(t, "alice@example.com")
	bob := ts.createTestUser(t, "bob@example.com")

	recipe := createTestRecipe(t, ts, alice, map[string]any{
		"title": "Private", "time_minutes": 5, "price": "1.00",
	})

	resp := ts.api.Get("/api/recipe/recipes/"+recipe.ID, "Authorization: Bearer "+bob)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateRecipe_PartialAndTagReplacement(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	recipe := createTestRecipe(t, ts, token, map[string]any{
		"title": "Original", "time_minutes": 10, "price": "2.00",
		"tags": []map[string]any{{"name": "Breakfast"}},
	})

	// Partial update leaves tags alone
	resp := ts.api.Patch("/api/recipe/recipes/"+recipe.ID,
		map[string]any{"title": "Renamed"},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var updated RecipeDetail
	decodeBody(t, resp.Body.Bytes(), &updated)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Len(t, updated.Tags, 1)

	// Explicit empty list detaches
	resp = ts.api.Patch("/api/recipe/recipes/"+recipe.ID,
		map[string]any{"tags": []map[string]any{}},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	decodeBody(t, resp.Body.Bytes(), &updated)
	assert.Empty(t, updated.Tags)
}

func TestDeleteRecipe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	recipe := createTestRecipe(t, ts, token, map[string]any{
		"title": "Doomed", "time_minutes": 5, "price": "1.00",
	})

	resp := ts.api.Delete("/api/recipe/recipes/"+recipe.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/recipe/recipes/"+recipe.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearchRecipes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	createTestRecipe(t, ts, token, map[string]any{
		"title": "Tomato Soup", "time_minutes": 5, "price": "1.00",
	})
	createTestRecipe(t, ts, token, map[string]any{
		"title": "Apple Pie", "time_minutes": 5, "price": "1.00",
	})

	resp := ts.api.Get("/api/recipe/recipes/search?q=tomato", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "Tomato Soup")
	assert.NotContains(t, resp.Body.String(), "Apple Pie")
}

// multipartImage builds a multipart body with a PNG under the "image" field.
func multipartImage(t *testing.T, filename string) (string, *bytes.Buffer) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 32, A: 255})
		}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, writer.Close())

	return writer.FormDataContentType(), &body
}

func TestUploadAndFetchRecipeImage(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	recipe := createTestRecipe(t, ts, token, map[string]any{
		"title": "Photogenic", "time_minutes": 5, "price": "1.00",
	})

	contentType, body := multipartImage(t, "photo.png")
	resp := ts.api.Post("/api/recipe/recipes/"+recipe.ID+"/upload-image",
		fmt.Sprintf("Content-Type: %s", contentType),
		"Authorization: Bearer "+token,
		body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated RecipeDetail
	decodeBody(t, resp.Body.Bytes(), &updated)
	assert.NotEmpty(t, updated.ImagePath)
	assert.NotContains(t, updated.ImagePath, "photo")
	assert.NotEmpty(t, updated.ImageBlurHash)

	resp = ts.api.Get("/api/recipe/recipes/"+recipe.ID+"/image", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.NotEmpty(t, resp.Body.Bytes())
}

func TestUploadRecipeImage_RejectsNonImage(t *testing.T) {
	ts := newTestServer(t)
	token := ts.createTestUser(t, "cook@example.com")

	recipe := createTestRecipe(t, ts, token, map[string]any{
		"title": "No Photo", "time_minutes": 5, "price": "1.00",
	})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "fake.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp := ts.api.Post("/api/recipe/recipes/"+recipe.ID+"/upload-image",
		fmt.Sprintf("Content-Type: %s", writer.FormDataContentType()),
		"Authorization: Bearer "+token,
		&body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
