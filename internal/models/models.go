// Package models defines the domain entities shared across storage,
// session, and bot layers.
package models

import "time"

// User is a Telegram user known to the bot. Created on first interaction,
// never deleted; the ban flag is flipped by admins only.
type User struct {
	ID        int64     `db:"id"`
	Username  *string   `db:"username"`
	FirstName *string   `db:"first_name"`
	LastName  *string   `db:"last_name"`
	IsBanned  bool      `db:"is_banned"`
	CreatedAt time.Time `db:"created_at"`
}

// Dish is a candidate dish suggested for the user's product set.
type Dish struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HistoryEntry is one bounded-history record of a past exchange.
// RecipeID references the recipes table; the text itself is not duplicated
// into the session beyond this snapshot.
type HistoryEntry struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	DishName  string    `json:"dish_name,omitempty"`
	RecipeID  int64     `json:"recipe_id,omitempty"`
}

// Session is the per-user conversational state. In memory it is strongly
// typed; categories, dishes and history are JSON only at the store boundary.
type Session struct {
	UserID      int64
	Products    string
	State       string
	Categories  []string
	Dishes      []Dish
	CurrentDish string
	History     []HistoryEntry
	UpdatedAt   time.Time
}

// Recipe is a generated recipe persisted for history and favorites.
type Recipe struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	DishName     string    `db:"dish_name"`
	RecipeText   string    `db:"recipe_text"`
	ProductsUsed string    `db:"products_used"`
	ImageURL     *string   `db:"image_url"`
	IsFavorite   bool      `db:"is_favorite"`
	CreatedAt    time.Time `db:"created_at"`
}

// CachedImage is a content-addressed record of a previously generated and
// uploaded dish photo, reused to avoid regenerating identical requests.
type CachedImage struct {
	ID             int64     `db:"id"`
	DishName       string    `db:"dish_name"`
	RecipeHash     string    `db:"recipe_hash"`
	ImageURL       string    `db:"image_url"`
	StorageBackend string    `db:"storage_backend"`
	FileSize       int64     `db:"file_size"`
	CreatedAt      time.Time `db:"created_at"`
}
