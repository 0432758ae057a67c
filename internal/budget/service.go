package budget

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"expense_tracker/internal/utils"
)

var ErrInvalidMonth = errors.New("invalid month key")

// SpendSummary provides month totals; implemented by the expense service.
type SpendSummary interface {
	MonthlySummary(userID, year, month int) (float64, error)
}

type BudgetServiceInterface interface {
	Set(userID int, month string, amount float64) (*Budget, error)
	Status(userID, year, month int) (*Status, error)
	Alerts(userID int) ([]*Alert, error)
}

type BudgetService struct {
	repo  BudgetRepositoryInterface
	db    *sql.DB
	spend SpendSummary
}

func NewBudgetService(repo BudgetRepositoryInterface, db *sql.DB, spend SpendSummary) BudgetServiceInterface {
	return &BudgetService{
		repo:  repo,
		db:    db,
		spend: spend,
	}
}

// Set stores the month's cap; setting the same month again replaces it.
func (s *BudgetService) Set(userID int, month string, amount float64) (*Budget, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, ErrInvalidMonth
	}

	b := &Budget{
		UserID: userID,
		Month:  month,
		Amount: amount,
	}

	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		saved, err := s.repo.Upsert(tx, b)
		if err != nil {
			return err
		}
		b = saved
		return nil
	}); err != nil {
		return nil, err
	}

	return b, nil
}

// Status compares the month's budget with its spend. A missing budget is
// not an error: the cap reads as zero and remaining is absent.
func (s *BudgetService) Status(userID, year, month int) (*Status, error) {
	spent, err := s.spend.MonthlySummary(userID, year, month)
	if err != nil {
		return nil, err
	}

	monthKey := fmt.Sprintf("%04d-%02d", year, month)
	b, err := s.repo.GetByMonth(s.db, userID, monthKey)
	if err != nil {
		if errors.Is(err, ErrBudgetNotFound) {
			return &Status{Budget: 0, Spent: spent}, nil
		}
		return nil, err
	}

	remaining := b.Amount - spent
	return &Status{
		Budget:    b.Amount,
		Spent:     spent,
		Remaining: &remaining,
	}, nil
}

// Alerts lists the owner's recorded over-budget alerts.
func (s *BudgetService) Alerts(userID int) ([]*Alert, error) {
	return s.repo.GetAlertsByUserID(s.db, userID)
}

// Lookup adapts the repository to the expense service's budget check.
type Lookup struct {
	repo BudgetRepositoryInterface
	db   *sql.DB
}

func NewLookup(repo BudgetRepositoryInterface, db *sql.DB) *Lookup {
	return &Lookup{repo: repo, db: db}
}

// MonthBudget returns the configured amount for a month key and whether one
// exists.
func (l *Lookup) MonthBudget(userID int, month string) (float64, bool, error) {
	b, err := l.repo.GetByMonth(l.db, userID, month)
	if err != nil {
		if errors.Is(err, ErrBudgetNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return b.Amount, true, nil
}
