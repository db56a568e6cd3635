package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/yeungho415/recipe/internal/domain"
	"github.com/yeungho415/recipe/internal/id"
	"github.com/yeungho415/recipe/internal/store"
)

// ingredientColumns is the ordered list of columns selected in ingredient
// queries. Must match the scan order in scanIngredient.
const ingredientColumns = `id, user_id, name, created_at, updated_at`

// scanIngredient scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Ingredient.
func scanIngredient(scanner interface{ Scan(dest ...any) error }) (*domain.Ingredient, error) {
	var ing domain.Ingredient

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&ing.ID,
		&ing.UserID,
		&ing.Name,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	ing.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	ing.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &ing, nil
}

// CreateIngredient inserts a new ingredient.
// Returns store.ErrAlreadyExists on a duplicate (user, name) pair.
func (s *Store) CreateIngredient(ctx context.Context, ing *domain.Ingredient) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingredients (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		ing.ID,
		ing.UserID,
		ing.Name,
		formatTime(ing.CreatedAt),
		formatTime(ing.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetIngredient retrieves an ingredient owned by the given user.
// Returns store.ErrNotFound if it does not exist or belongs to someone else.
func (s *Store) GetIngredient(ctx context.Context, userID, ingredientID string) (*domain.Ingredient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE id = ? AND user_id = ?`,
		ingredientID, userID)

	ing, err := scanIngredient(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ing, nil
}

// ListIngredients returns the user's ingredients ordered by name descending.
// With assignedOnly, only ingredients attached to at least one recipe are
// returned.
func (s *Store) ListIngredients(ctx context.Context, userID string, assignedOnly bool) ([]*domain.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE user_id = ?`
	if assignedOnly {
		query += ` AND EXISTS (SELECT 1 FROM recipe_ingredients WHERE recipe_ingredients.ingredient_id = ingredients.id)`
	}
	query += ` ORDER BY name DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ingredients []*domain.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if ingredients == nil {
		ingredients = []*domain.Ingredient{}
	}
	return ingredients, nil
}

// ListIngredientsForRecipe returns the ingredients attached to a recipe,
// ordered by name.
func (s *Store) ListIngredientsForRecipe(ctx context.Context, recipeID string) ([]*domain.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.user_id, i.name, i.created_at, i.updated_at
		FROM ingredients i
		JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = ?
		ORDER BY i.name ASC`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ingredients []*domain.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if ingredients == nil {
		ingredients = []*domain.Ingredient{}
	}
	return ingredients, nil
}

// UpdateIngredient renames an ingredient owned by the given user.
// Returns store.ErrNotFound if missing, store.ErrAlreadyExists if the new
// name collides with another of the user's ingredients.
func (s *Store) UpdateIngredient(ctx context.Context, ing *domain.Ingredient) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ingredients SET name = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		ing.Name,
		formatTime(ing.UpdatedAt),
		ing.ID,
		ing.UserID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteIngredient removes an ingredient owned by the given user. Recipe
// associations go with it via ON DELETE CASCADE.
// Returns store.ErrNotFound if it does not exist or belongs to someone else.
func (s *Store) DeleteIngredient(ctx context.Context, userID, ingredientID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM ingredients WHERE id = ? AND user_id = ?`, ingredientID, userID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ReplaceRecipeIngredients replaces the ingredient set of a recipe in a
// single transaction: existing associations are cleared, then each name is
// found or created for the user and attached. Duplicate names collapse.
// Returns the attached ingredients.
// Returns store.ErrNotFound if the recipe does not exist or belongs to
// someone else.
func (s *Store) ReplaceRecipeIngredients(ctx context.Context, userID, recipeID string, names []string) ([]*domain.Ingredient, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := recipeOwnedTx(ctx, tx, userID, recipeID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipeID); err != nil {
		return nil, fmt.Errorf("delete recipe_ingredients: %w", err)
	}

	now := formatTime(time.Now().UTC())
	seen := make(map[string]bool, len(names))
	var ingredients []*domain.Ingredient

	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		ing, err := upsertIngredientTx(ctx, tx, userID, name)
		if err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, created_at)
			VALUES (?, ?, ?)`,
			recipeID, ing.ID, now,
		); err != nil {
			return nil, fmt.Errorf("insert recipe_ingredient: %w", err)
		}

		ingredients = append(ingredients, ing)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if ingredients == nil {
		ingredients = []*domain.Ingredient{}
	}
	return ingredients, nil
}

// upsertIngredientTx finds or creates a (user, name) ingredient inside a
// transaction. A lost race against the unique constraint falls back to
// re-reading the row.
func upsertIngredientTx(ctx context.Context, tx *sql.Tx, userID, name string) (*domain.Ingredient, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE user_id = ? AND name = ?`, userID, name)
	ing, err := scanIngredient(row)
	if err == nil {
		return ing, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	ingredientID, err := id.Generate("ing")
	if err != nil {
		return nil, fmt.Errorf("generate ingredient id: %w", err)
	}

	now := formatTime(time.Now().UTC())
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ingredients (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		ingredientID, userID, name, now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			row := tx.QueryRowContext(ctx,
				`SELECT `+ingredientColumns+` FROM ingredients WHERE user_id = ? AND name = ?`, userID, name)
			return scanIngredient(row)
		}
		return nil, err
	}

	row = tx.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE id = ?`, ingredientID)
	return scanIngredient(row)
}
