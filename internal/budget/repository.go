package budget

import (
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")

type BudgetRepository struct{}

type BudgetRepositoryInterface interface {
	Upsert(tx *sql.Tx, b *Budget) (*Budget, error)
	GetByMonth(db *sql.DB, userID int, month string) (*Budget, error)
	CreateAlert(tx *sql.Tx, a *Alert) (int, error)
	GetAlertsByUserID(db *sql.DB, userID int) ([]*Alert, error)
}

func NewBudgetRepository() BudgetRepositoryInterface {
	return &BudgetRepository{}
}

// Upsert sets the month's budget, replacing any existing amount. The
// UNIQUE(user_id, month) constraint makes the replace atomic.
func (r *BudgetRepository) Upsert(tx *sql.Tx, b *Budget) (*Budget, error) {
	query := `
		INSERT INTO budgets (user_id, month, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, month)
		DO UPDATE SET amount = EXCLUDED.amount
		RETURNING id
	`

	err := tx.QueryRow(
		query,
		b.UserID,
		b.Month,
		b.Amount,
	).Scan(&b.ID)

	if err != nil {
		logrus.WithError(err).Error("Failed to upsert budget")
		return nil, err
	}

	return b, nil
}

// GetByMonth retrieves the owner's budget for a month key.
func (r *BudgetRepository) GetByMonth(db *sql.DB, userID int, month string) (*Budget, error) {
	query := `
		SELECT id, user_id, month, amount
		FROM budgets
		WHERE user_id = $1 AND month = $2
	`

	b := &Budget{}
	err := db.QueryRow(query, userID, month).Scan(
		&b.ID,
		&b.UserID,
		&b.Month,
		&b.Amount,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		logrus.WithError(err).Error("Failed to get budget")
		return nil, err
	}

	return b, nil
}

// CreateAlert persists a consumed over-budget event.
func (r *BudgetRepository) CreateAlert(tx *sql.Tx, a *Alert) (int, error) {
	query := `
		INSERT INTO budget_alerts (
			user_id, month, budget_amount, spent, created_at
		)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`

	var id int
	err := tx.QueryRow(
		query,
		a.UserID,
		a.Month,
		a.BudgetAmount,
		a.Spent,
	).Scan(&id)

	if err != nil {
		logrus.WithError(err).Error("Failed to create budget alert")
		return 0, err
	}

	return id, nil
}

// GetAlertsByUserID lists the owner's recorded alerts, newest first.
func (r *BudgetRepository) GetAlertsByUserID(db *sql.DB, userID int) ([]*Alert, error) {
	query := `
		SELECT id, user_id, month, budget_amount, spent, created_at
		FROM budget_alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		var a Alert
		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Month,
			&a.BudgetAmount,
			&a.Spent,
			&a.CreatedAt,
		)
		if err != nil {
			logrus.Error("Error scanning alert row: ", err)
			continue
		}
		alerts = append(alerts, &a)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return alerts, nil
}
