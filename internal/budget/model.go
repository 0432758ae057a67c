package budget

import "time"

// Budget caps a user's spend for one calendar month. Month keys use the
// "YYYY-MM" form. At most one budget exists per (user, month); setting it
// again replaces the amount.
type Budget struct {
	ID     int     `json:"id"`
	UserID int     `json:"user_id"`
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// Status reports a month's budget against its spend. Remaining is absent
// when no budget is configured; Budget reads as zero in that case.
type Status struct {
	Budget    float64  `json:"budget"`
	Spent     float64  `json:"spent"`
	Remaining *float64 `json:"remaining,omitempty"`
}

// AlertEvent is the over-budget message published to the alert queue.
type AlertEvent struct {
	UserID       int     `json:"user_id"`
	Month        string  `json:"month"`
	BudgetAmount float64 `json:"budget_amount"`
	Spent        float64 `json:"spent"`
}

// Alert is the persisted record the worker writes once an event is consumed.
type Alert struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Month        string    `json:"month"`
	BudgetAmount float64   `json:"budget_amount"`
	Spent        float64   `json:"spent"`
	CreatedAt    time.Time `json:"created_at"`
}
