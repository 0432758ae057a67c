package expense

import "time"

type Expense struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows a list query. Every field combines with the others; the
// owner constraint is applied unconditionally by the repository.
type Filter struct {
	Category   string     // exact match
	TitleQuery string     // case-insensitive substring
	From       *time.Time // inclusive
	To         *time.Time // exclusive
	Page       int        // 1-based
	PageSize   int        // 0 disables pagination
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Categories is the static list served by GET /categories.
var Categories = []string{
	"Food",
	"Transport",
	"Housing",
	"Utilities",
	"Entertainment",
	"Health",
	"Shopping",
	"Other",
}
