package store

// RecipeFilter narrows recipe listings. Empty slices mean no filtering on
// that dimension. Within one slice, matching any ID is enough; when both
// slices are set a recipe must match each of them.
type RecipeFilter struct {
	TagIDs        []string
	IngredientIDs []string
}

// IsZero reports whether the filter imposes no constraints.
func (f RecipeFilter) IsZero() bool {
	return len(f.TagIDs) == 0 && len(f.IngredientIDs) == 0
}
