package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yeungho415/recipe/internal/domain"
	"github.com/yeungho415/recipe/internal/store"
)

// recipeColumns is the ordered list of columns selected in recipe queries.
// Must match the scan order in scanRecipe.
const recipeColumns = `seq, id, user_id, title, description, time_minutes,
	price_cents, link, image_path, image_blurhash, created_at, updated_at`

// scanRecipe scans a sql.Row (or sql.Rows via its Scan method) into a domain.Recipe.
// Tags and ingredients are left nil; the caller loads them separately.
func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var r domain.Recipe

	var (
		priceCents int64
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&r.Seq,
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.Description,
		&r.TimeMinutes,
		&priceCents,
		&r.Link,
		&r.ImagePath,
		&r.ImageBlurHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Price = domain.Price(priceCents)

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// CreateRecipe inserts a new recipe and fills in its assigned sequence number.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO recipes (
			id, user_id, title, description, time_minutes, price_cents,
			link, image_path, image_blurhash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.UserID,
		r.Title,
		r.Description,
		r.TimeMinutes,
		int64(r.Price),
		r.Link,
		r.ImagePath,
		r.ImageBlurHash,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	// LastInsertId is the rowid, which is the seq column.
	r.Seq, err = res.LastInsertId()
	if err != nil {
		return err
	}
	return nil
}

// GetRecipe retrieves a recipe owned by the given user, with tags and
// ingredients attached. Returns store.ErrNotFound if the recipe does not
// exist or belongs to someone else.
func (s *Store) GetRecipe(ctx context.Context, userID, recipeID string) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ? AND user_id = ?`,
		recipeID, userID)

	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadAssociations(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRecipes returns the user's recipes, newest first, with tags and
// ingredients attached. The filter narrows results by associated tag or
// ingredient IDs.
func (s *Store) ListRecipes(ctx context.Context, userID string, filter store.RecipeFilter) ([]*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE user_id = ?`
	args := []any{userID}

	if len(filter.TagIDs) > 0 {
		query += ` AND id IN (SELECT recipe_id FROM recipe_tags WHERE tag_id IN (` +
			placeholders(len(filter.TagIDs)) + `))`
		for _, tid := range filter.TagIDs {
			args = append(args, tid)
		}
	}
	if len(filter.IngredientIDs) > 0 {
		query += ` AND id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id IN (` +
			placeholders(len(filter.IngredientIDs)) + `))`
		for _, iid := range filter.IngredientIDs {
			args = append(args, iid)
		}
	}

	query += ` ORDER BY seq DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*domain.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, r := range recipes {
		if err := s.loadAssociations(ctx, r); err != nil {
			return nil, err
		}
	}

	if recipes == nil {
		recipes = []*domain.Recipe{}
	}
	return recipes, nil
}

// UpdateRecipe persists scalar changes to a recipe owned by the given user.
// Associations are managed through ReplaceRecipeTags/ReplaceRecipeIngredients.
// Returns store.ErrNotFound if the recipe does not exist or belongs to
// someone else.
func (s *Store) UpdateRecipe(ctx context.Context, r *domain.Recipe) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recipes SET
			title = ?, description = ?, time_minutes = ?, price_cents = ?,
			link = ?, image_path = ?, image_blurhash = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		r.Title,
		r.Description,
		r.TimeMinutes,
		int64(r.Price),
		r.Link,
		r.ImagePath,
		r.ImageBlurHash,
		formatTime(r.UpdatedAt),
		r.ID,
		r.UserID,
	)
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

// DeleteRecipe removes a recipe owned by the given user. Association rows go
// with it via ON DELETE CASCADE; tags and ingredients themselves survive.
// Returns store.ErrNotFound if the recipe does not exist or belongs to
// someone else.
func (s *Store) DeleteRecipe(ctx context.Context, userID, recipeID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = ? AND user_id = ?`, recipeID, userID)
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

// loadAssociations fills in the recipe's tags and ingredients.
func (s *Store) loadAssociations(ctx context.Context, r *domain.Recipe) error {
	tags, err := s.ListTagsForRecipe(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("load recipe tags: %w", err)
	}
	r.Tags = tags

	ingredients, err := s.ListIngredientsForRecipe(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("load recipe ingredients: %w", err)
	}
	r.Ingredients = ingredients
	return nil
}

// recipeOwnedTx verifies inside a transaction that the recipe exists and
// belongs to the user. Returns store.ErrNotFound otherwise.
func recipeOwnedTx(ctx context.Context, tx *sql.Tx, userID, recipeID string) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM recipes WHERE id = ? AND user_id = ?`, recipeID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	return err
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
