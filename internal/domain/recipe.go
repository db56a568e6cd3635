package domain

// Recipe is the central entity. Every recipe belongs to exactly one user;
// tags and ingredients are attached through join tables and always belong to
// the same user as the recipe.
type Recipe struct {
	Entity
	// Seq is the monotonic surrogate key assigned by the database.
	// Listings are ordered by it, newest first. Not exposed over the API.
	Seq         int64  `json:"-"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TimeMinutes int    `json:"time_minutes"`
	Price       Price  `json:"price"`
	Link        string `json:"link,omitempty"`

	// ImagePath is the stored filename under the uploads directory,
	// empty when no image has been attached.
	ImagePath     string `json:"image_path,omitempty"`
	ImageBlurHash string `json:"image_blurhash,omitempty"`

	Tags        []*Tag        `json:"tags"`
	Ingredients []*Ingredient `json:"ingredients"`
}

// HasImage reports whether an image is attached.
func (r *Recipe) HasImage() bool {
	return r.ImagePath != ""
}
