package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeungho415/recipe/internal/domain"
	domainerrors "github.com/yeungho415/recipe/internal/errors"
	"github.com/yeungho415/recipe/internal/search"
	"github.com/yeungho415/recipe/internal/store"
)

func registerTestUser(t *testing.T, env *testServices, email string) *domain.User {
	t.Helper()
	user, err := env.Users.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRecipeService_Create(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	user := registerTestUser(t, env, "cook@example.com")

	recipe, err := env.Recipes.CreateRecipe(ctx, user.ID, CreateRecipeRequest{
		Title:       "Thai Curry",
		TimeMinutes: 30,
		Price:       "5.25",
		Description: "Spicy and quick",
		Link:        "https://example.com/curry",
		Tags:        []TagInput{{Name: "Thai"}, {Name: "Dinner"}},
		Ingredients: []IngredientInput{{Name: "Coconut milk"}, {Name: "Rice"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Thai Curry", recipe.Title)
	assert.Equal(t, "5.25", recipe.Price.String())
	assert.Len(t, recipe.Tags, 2)
	assert.Len(t, recipe.Ingredients, 2)
	assert.NotZero(t, recipe.Seq)

	// Searchable right after creation
	res, err := env.Recipes.Search(ctx, search.Params{UserID: user.ID, Query: "curry"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
}

func TestRecipeService_Create_InvalidPrice(t *testing.T) {
	env := setupTestServices(t)
	user := registerTestUser(t, env, "cook@example.com")

	for _, price := range []string{"", "abc", "-1", "5.123", "1000.00"} {
		_, err := env.Recipes.CreateRecipe(context.Background(), user.ID, CreateRecipeRequest{
			Title:       "Broken",
			TimeMinutes: 5,
			Price:       price,
		})
		assert.ErrorIs(t, err, domainerrors.ErrValidation, "price %q should be rejected", price)
	}
}

func TestRecipeService_Create_ReusesTagsByName(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	user := registerTestUser(t, env, "cook@example.com")

	first, err := env.Recipes.CreateRecipe(ctx, user.ID, CreateRecipeRequest{
		Title: "One", TimeMinutes: 5, Price: "1.00",
		Tags: []TagInput{{Name: "Vegan"}},
	})
	require.NoError(t, err)

	second, err := env.Recipes.CreateRecipe(ctx, user.ID, CreateRecipeRequest{
		Title: "Two", TimeMinutes: 5, Price: "1.00",
		Tags: []TagInput{{Name: "Vegan"}},
	})
	require.NoError(t, err)

	assert.Equal(t, first.Tags[0].ID, second.Tags[0].ID)

	tags, err := env.Tags.ListTags(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestRecipeService_Update_PartialAndNested(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	user := registerTestUser(t, env, "cook@example.com")

	recipe, err := env.Recipes.CreateRecipe(ctx, user.ID, CreateRecipeRequest{
		Title: "Original", TimeMinutes: 10, Price: "2.00",
		Tags: []TagInput{{Name: "Breakfast"}},
	})
	require.NoError(t, err)

	newTitle := "Renamed"
	updated, err := env.Recipes.UpdateRecipe(ctx, user.ID, recipe.ID, UpdateRecipeRequest{
		Title: &newTitle,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	// Omitted tags are untouched
	assert.Len(t, updated.Tags, 1)

	// Explicit empty list detaches everything
	empty := []TagInput{}
	updated, err = env.Recipes.UpdateRecipe(ctx, user.ID, recipe.ID, UpdateRecipeRequest{
		Tags: &empty,
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)

	// Detached tag still exists for the user
	tags, err := env.Tags.ListTags(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestRecipeService_Update_ForeignRecipe(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	owner := registerTestUser(t, env, "owner@example.com")
	other := registerTestUser(t, env, "other@example.com")

	recipe, err := env.Recipes.CreateRecipe(ctx, owner.ID, CreateRecipeRequest{
		Title: "Private", TimeMinutes: 5, Price: "1.00",
	})
	require.NoError(t, err)

	newTitle := "Hijacked"
	_, err = env.Recipes.UpdateRecipe(ctx, other.ID, recipe.ID, UpdateRecipeRequest{Title: &newTitle})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = env.Recipes.DeleteRecipe(ctx, other.ID, recipe.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRecipeService_List_Filtered(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	user := registerTestUser(t, env, "cook@example.com")

	tagged, err := env.Recipes.CreateRecipe(ctx, user.ID, CreateRecipeRequest{
		Title: "Tagged", TimeMinutes: 5, Price: "1.00",
		Tags: []TagInput{{Name: "Quick"}},
	})
	require.NoError(t, err)

	_, err = env.Recipes.CreateRecipe(ctx, user.ID, CreateRecipeRequest{
		Title: "Plain", TimeMinutes: 5, Price: "1.00",
	})
	require.NoError(t, err)

	all, err := env.Recipes.ListRecipes(ctx, user.ID, store.RecipeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	// Newest first
	assert.Equal(t, "Plain", all[0].Title)

	filtered, err := env.Recipes.ListRecipes(ctx, user.ID, store.RecipeFilter{
		TagIDs: []string{tagged.Tags[0].ID},
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, tagged.ID, filtered[0].ID)
}

func TestRecipeService_Delete_CleansUp(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	user := registerTestUser(t, env, "cook@example.com")

	recipe, err := env.Recipes.CreateRecipe(ctx, user.ID, CreateRecipeRequest{
		Title: "Doomed Pie", TimeMinutes: 5, Price: "1.00",
	})
	require.NoError(t, err)

	withImage, err := env.Recipes.UploadImage(ctx, user.ID, recipe.ID, encodeTestPNG(t), "pie.png")
	require.NoError(t, err)
	require.True(t, env.Images.Exists(withImage.ImagePath))

	require.NoError(t, env.Recipes.DeleteRecipe(ctx, user.ID, recipe.ID))

	_, err = env.Recipes.GetRecipe(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.False(t, env.Images.Exists(withImage.ImagePath))

	res, err := env.Recipes.Search(ctx, search.Params{UserID: user.ID, Query: "pie"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Total)
}

func TestRecipeService_UploadImage(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	user := registerTestUser(t, env, "cook@example.com")

	recipe, err := env.Recipes.CreateRecipe(ctx, user.ID, CreateRecipeRequest{
		Title: "Photogenic", TimeMinutes: 5, Price: "1.00",
	})
	require.NoError(t, err)

	updated, err := env.Recipes.UploadImage(ctx, user.ID, recipe.ID, encodeTestPNG(t), "Photo.PNG")
	require.NoError(t, err)
	assert.True(t, updated.HasImage())
	assert.NotContains(t, updated.ImagePath, "Photo")
	assert.Contains(t, updated.ImagePath, ".png")
	assert.NotEmpty(t, updated.ImageBlurHash)

	firstPath := updated.ImagePath

	// Replacing the image removes the previous file
	replaced, err := env.Recipes.UploadImage(ctx, user.ID, recipe.ID, encodeTestPNG(t), "other.png")
	require.NoError(t, err)
	assert.NotEqual(t, firstPath, replaced.ImagePath)
	assert.False(t, env.Images.Exists(firstPath))

	data, name, err := env.Recipes.GetImage(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, replaced.ImagePath, name)
	assert.NotEmpty(t, data)
}

func TestRecipeService_UploadImage_RejectsGarbage(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	user := registerTestUser(t, env, "cook@example.com")

	recipe, err := env.Recipes.CreateRecipe(ctx, user.ID, CreateRecipeRequest{
		Title: "No Photo", TimeMinutes: 5, Price: "1.00",
	})
	require.NoError(t, err)

	_, err = env.Recipes.UploadImage(ctx, user.ID, recipe.ID, []byte("not an image"), "fake.jpg")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, _, err = env.Recipes.GetImage(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRecipeService_Search_ScopedToUser(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	alice := registerTestUser(t, env, "alice@example.com")
	bob := registerTestUser(t, env, "bob@example.com")

	_, err := env.Recipes.CreateRecipe(ctx, alice.ID, CreateRecipeRequest{
		Title: "Tomato Soup", TimeMinutes: 5, Price: "1.00",
	})
	require.NoError(t, err)

	res, err := env.Recipes.Search(ctx, search.Params{UserID: bob.ID, Query: "tomato"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Total)
}
