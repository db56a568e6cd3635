package domain

// Tag labels recipes for filtering, e.g. "vegan" or "dessert".
// Tags are scoped to their owning user; (UserID, Name) is unique.
type Tag struct {
	Entity
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Ingredient is a named component of recipes, scoped to its owning user like
// tags. (UserID, Name) is unique.
type Ingredient struct {
	Entity
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
