// Package search provides full-text recipe search using Bleve.
package search

import (
	"github.com/yeungho415/recipe/internal/domain"
)

// RecipeDocument is the document structure indexed for each recipe.
// Tag and ingredient names are denormalized into the document so a single
// query covers everything a user might remember about a recipe.
type RecipeDocument struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	TimeMinutes int      `json:"time_minutes"`
	CreatedAt   int64    `json:"created_at"` // Unix millis
}

// NewRecipeDocument builds the search document for a recipe.
func NewRecipeDocument(r *domain.Recipe) *RecipeDocument {
	doc := &RecipeDocument{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		TimeMinutes: r.TimeMinutes,
		CreatedAt:   r.CreatedAt.UnixMilli(),
	}
	for _, t := range r.Tags {
		doc.Tags = append(doc.Tags, t.Name)
	}
	for _, ing := range r.Ingredients {
		doc.Ingredients = append(doc.Ingredients, ing.Name)
	}
	return doc
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our mapping
// uses lowercase names, so we convert explicitly.
func (d *RecipeDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":           d.ID,
		"user_id":      d.UserID,
		"title":        d.Title,
		"time_minutes": d.TimeMinutes,
		"created_at":   d.CreatedAt,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if len(d.Ingredients) > 0 {
		m["ingredients"] = d.Ingredients
	}
	return m
}
