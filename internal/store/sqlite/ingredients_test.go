package sqlite

import (
	"context"
	"testing"

	"github.com/yeungho415/recipe/internal/domain"
	"github.com/yeungho415/recipe/internal/id"
	"github.com/yeungho415/recipe/internal/store"
)

func TestReplaceRecipeIngredients(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "chef@example.com")
	r := newTestRecipe(t, s, u.ID, "Pancakes")

	ings, err := s.ReplaceRecipeIngredients(ctx, u.ID, r.ID, []string{"flour", "eggs", "milk"})
	if err != nil {
		t.Fatalf("replace ingredients: %v", err)
	}
	if len(ings) != 3 {
		t.Fatalf("got %d ingredients, want 3", len(ings))
	}

	got, err := s.GetRecipe(ctx, u.ID, r.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if len(got.Ingredients) != 3 {
		t.Errorf("recipe should carry 3 ingredients: %+v", got.Ingredients)
	}

	// Replace with a subset; the dropped rows survive detached.
	if _, err := s.ReplaceRecipeIngredients(ctx, u.ID, r.ID, []string{"flour"}); err != nil {
		t.Fatalf("replace again: %v", err)
	}
	got, err = s.GetRecipe(ctx, u.ID, r.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if len(got.Ingredients) != 1 || got.Ingredients[0].Name != "flour" {
		t.Errorf("ingredients = %+v, want just flour", got.Ingredients)
	}

	all, err := s.ListIngredients(ctx, u.ID, false)
	if err != nil {
		t.Fatalf("list ingredients: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("detached ingredients should survive: got %d", len(all))
	}
}

func TestListIngredientsAssignedOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "chef@example.com")
	r := newTestRecipe(t, s, u.ID, "Omelette")

	spare := &domain.Ingredient{UserID: u.ID, Name: "truffle"}
	spare.ID = id.MustGenerate("ing")
	spare.InitTimestamps()
	if err := s.CreateIngredient(ctx, spare); err != nil {
		t.Fatalf("create ingredient: %v", err)
	}

	if _, err := s.ReplaceRecipeIngredients(ctx, u.ID, r.ID, []string{"eggs"}); err != nil {
		t.Fatalf("replace ingredients: %v", err)
	}

	assigned, err := s.ListIngredients(ctx, u.ID, true)
	if err != nil {
		t.Fatalf("list assigned: %v", err)
	}
	if len(assigned) != 1 || assigned[0].Name != "eggs" {
		t.Errorf("assigned only: got %+v", assigned)
	}
}

func TestListIngredientsNameDescending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "chef@example.com")
	for _, name := range []string{"basil", "tomato", "garlic"} {
		ing := &domain.Ingredient{UserID: u.ID, Name: name}
		ing.ID = id.MustGenerate("ing")
		ing.InitTimestamps()
		if err := s.CreateIngredient(ctx, ing); err != nil {
			t.Fatalf("create ingredient %s: %v", name, err)
		}
	}

	ings, err := s.ListIngredients(ctx, u.ID, false)
	if err != nil {
		t.Fatalf("list ingredients: %v", err)
	}
	if len(ings) != 3 {
		t.Fatalf("got %d ingredients, want 3", len(ings))
	}
	if ings[0].Name != "tomato" || ings[1].Name != "garlic" || ings[2].Name != "basil" {
		t.Errorf("wrong order: %q, %q, %q", ings[0].Name, ings[1].Name, ings[2].Name)
	}
}

func TestUpdateAndDeleteIngredient(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "chef@example.com")
	r := newTestRecipe(t, s, u.ID, "Stew")
	ings, err := s.ReplaceRecipeIngredients(ctx, u.ID, r.ID, []string{"potatos"})
	if err != nil {
		t.Fatalf("replace ingredients: %v", err)
	}

	ing := ings[0]
	ing.Name = "potatoes"
	ing.Touch()
	if err := s.UpdateIngredient(ctx, ing); err != nil {
		t.Fatalf("update ingredient: %v", err)
	}

	got, err := s.GetIngredient(ctx, u.ID, ing.ID)
	if err != nil {
		t.Fatalf("get ingredient: %v", err)
	}
	if got.Name != "potatoes" {
		t.Errorf("name = %q, want %q", got.Name, "potatoes")
	}

	// Foreign users cannot touch it.
	other := newTestUser(t, s, "other@example.com")
	if _, err := s.GetIngredient(ctx, other.ID, ing.ID); err != store.ErrNotFound {
		t.Errorf("foreign get: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteIngredient(ctx, other.ID, ing.ID); err != store.ErrNotFound {
		t.Errorf("foreign delete: got %v, want ErrNotFound", err)
	}

	if err := s.DeleteIngredient(ctx, u.ID, ing.ID); err != nil {
		t.Fatalf("delete ingredient: %v", err)
	}
	rec, err := s.GetRecipe(ctx, u.ID, r.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if len(rec.Ingredients) != 0 {
		t.Errorf("deleted ingredient should be detached: %+v", rec.Ingredients)
	}
}
