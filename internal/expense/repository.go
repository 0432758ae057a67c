package expense

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrExpenseNotFound covers both a missing row and a row owned by someone
// else. The two cases are deliberately indistinguishable so an id cannot be
// probed across owners.
var ErrExpenseNotFound = errors.New("expense not found")

type ExpenseRepository struct{}

type ExpenseRepositoryInterface interface {
	Create(tx *sql.Tx, e *Expense) (*Expense, error)
	GetByUserID(db *sql.DB, userID int, f Filter) ([]*Expense, error)
	Update(tx *sql.Tx, userID int, e *Expense) (*Expense, error)
	Delete(tx *sql.Tx, userID, id int) error
	MonthlySum(db *sql.DB, userID, year, month int) (float64, error)
	CategoryTotals(db *sql.DB, userID int) ([]CategoryTotal, error)
}

func NewExpenseRepository() ExpenseRepositoryInterface {
	return &ExpenseRepository{}
}

// Create inserts a new expense; id and created_at are assigned by the store.
func (r *ExpenseRepository) Create(
	tx *sql.Tx,
	e *Expense,
) (*Expense, error) {
	query := `
		INSERT INTO expenses (
			title, amount, category, user_id, created_at
		)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		query,
		e.Title,
		e.Amount,
		e.Category,
		e.UserID,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		logrus.WithError(err).Error("Failed to create expense")
		return nil, err
	}

	return e, nil
}

// GetByUserID returns the owner's expenses matching f, newest first.
func (r *ExpenseRepository) GetByUserID(
	db *sql.DB,
	userID int,
	f Filter,
) ([]*Expense, error) {
	query := `
		SELECT
			id, title, amount, COALESCE(category, ''), user_id, created_at
		FROM expenses
		WHERE user_id = $1
	`
	args := []interface{}{userID}

	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.TitleQuery != "" {
		args = append(args, "%"+f.TitleQuery+"%")
		query += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}

	query += " ORDER BY created_at DESC, id DESC"

	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		args = append(args, f.PageSize)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, (page-1)*f.PageSize)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		var e Expense
		err := rows.Scan(
			&e.ID,
			&e.Title,
			&e.Amount,
			&e.Category,
			&e.UserID,
			&e.CreatedAt,
		)
		if err != nil {
			logrus.Error("Error scanning expense row: ", err)
			continue
		}
		expenses = append(expenses, &e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

// Update replaces the mutable fields of the owner's expense in one statement.
func (r *ExpenseRepository) Update(
	tx *sql.Tx,
	userID int,
	e *Expense,
) (*Expense, error) {
	query := `
		UPDATE expenses
		SET title = $1, amount = $2, category = $3
		WHERE id = $4 AND user_id = $5
		RETURNING id, title, amount, COALESCE(category, ''), user_id, created_at
	`

	var updated Expense
	err := tx.QueryRow(
		query,
		e.Title,
		e.Amount,
		e.Category,
		e.ID,
		userID,
	).Scan(
		&updated.ID,
		&updated.Title,
		&updated.Amount,
		&updated.Category,
		&updated.UserID,
		&updated.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		logrus.WithError(err).Error("Failed to update expense")
		return nil, err
	}

	return &updated, nil
}

// Delete removes the owner's expense.
func (r *ExpenseRepository) Delete(tx *sql.Tx, userID, id int) error {
	query := `
		DELETE FROM expenses
		WHERE id = $1 AND user_id = $2
	`

	result, err := tx.Exec(query, id, userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to delete expense")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// MonthlySum totals the owner's expenses for the calendar month. Months with
// no expenses sum to zero, not an error.
func (r *ExpenseRepository) MonthlySum(db *sql.DB, userID, year, month int) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = $1
		  AND EXTRACT(YEAR FROM created_at) = $2
		  AND EXTRACT(MONTH FROM created_at) = $3
	`

	var total float64
	if err := db.QueryRow(query, userID, year, month).Scan(&total); err != nil {
		logrus.WithError(err).Error("Failed to compute monthly sum")
		return 0, err
	}

	return total, nil
}

// CategoryTotals aggregates the owner's spend per category.
func (r *ExpenseRepository) CategoryTotals(db *sql.DB, userID int) ([]CategoryTotal, error) {
	query := `
		SELECT COALESCE(category, ''), SUM(amount)
		FROM expenses
		WHERE user_id = $1
		GROUP BY category
		ORDER BY SUM(amount) DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			logrus.Error("Error scanning category row: ", err)
			continue
		}
		totals = append(totals, ct)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return totals, nil
}
