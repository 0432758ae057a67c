package expense

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"expense_tracker/internal/cache"
	"expense_tracker/internal/observability"
	"expense_tracker/internal/utils"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// BudgetGetter resolves the configured budget for a user's month key
// ("YYYY-MM"). Implemented by the budget package's Lookup.
type BudgetGetter interface {
	MonthBudget(userID int, month string) (float64, bool, error)
}

// AlertPublisher emits an over-budget event for asynchronous delivery.
type AlertPublisher interface {
	PublishBudgetAlert(userID int, month string, budgetAmount, spent float64) error
}

type ExpenseServiceInterface interface {
	Create(userID int, title string, amount float64, category string) (*Expense, error)
	List(userID int, f Filter) ([]*Expense, error)
	Update(userID, id int, title string, amount float64, category string) (*Expense, error)
	Delete(userID, id int) error
	MonthlySummary(userID, year, month int) (float64, error)
	CategorySummary(userID int) ([]CategoryTotal, error)
	ExportCSV(userID int, w io.Writer) error
	Anomalies(userID int) ([]*Expense, error)
}

type ExpenseService struct {
	repo    ExpenseRepositoryInterface
	db      *sql.DB
	cache   *cache.ExpenseCache
	budgets BudgetGetter
	alerts  AlertPublisher
}

func NewExpenseService(
	repo ExpenseRepositoryInterface,
	db *sql.DB,
	redisClient *redis.Client,
	budgets BudgetGetter,
	alerts AlertPublisher,
) ExpenseServiceInterface {
	return &ExpenseService{
		repo:    repo,
		db:      db,
		cache:   cache.NewExpenseCache(redisClient),
		budgets: budgets,
		alerts:  alerts,
	}
}

// Create inserts the expense for its owner, then checks the month's budget
// and publishes an alert when the new total exceeds it. Alert delivery is
// best-effort; a publish failure never fails the request.
func (s *ExpenseService) Create(userID int, title string, amount float64, category string) (*Expense, error) {
	e := &Expense{
		Title:    title,
		Amount:   amount,
		Category: category,
		UserID:   userID,
	}

	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		created, err := s.repo.Create(tx, e)
		if err != nil {
			return err
		}
		e = created
		return nil
	}); err != nil {
		return nil, err
	}

	if observability.GlobalMetrics != nil {
		observability.GlobalMetrics.ExpensesCreatedTotal.WithLabelValues(category).Inc()
	}

	s.invalidate(userID)
	s.checkBudget(userID, e.CreatedAt)

	return e, nil
}

// List returns the owner's expenses matching the filter. Other owners'
// records are never reachable through any filter combination.
func (s *ExpenseService) List(userID int, f Filter) ([]*Expense, error) {
	return s.repo.GetByUserID(s.db, userID, f)
}

func (s *ExpenseService) Update(userID, id int, title string, amount float64, category string) (*Expense, error) {
	e := &Expense{
		ID:       id,
		Title:    title,
		Amount:   amount,
		Category: category,
	}

	var updated *Expense
	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		var err error
		updated, err = s.repo.Update(tx, userID, e)
		return err
	}); err != nil {
		return nil, err
	}

	s.invalidate(userID)

	return updated, nil
}

func (s *ExpenseService) Delete(userID, id int) error {
	if err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		return s.repo.Delete(tx, userID, id)
	}); err != nil {
		return err
	}

	s.invalidate(userID)

	return nil
}

// MonthlySummary is a read-through cached month total.
func (s *ExpenseService) MonthlySummary(userID, year, month int) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cacheKey := cache.MonthlySummaryKey(userID, year, month)
	cachedData, err := s.cache.Get(ctx, cacheKey)
	if err == nil && cachedData != nil {
		var total float64
		if json.Unmarshal(cachedData, &total) == nil {
			if observability.GlobalMetrics != nil {
				observability.GlobalMetrics.CacheHitsTotal.WithLabelValues("monthly_summary").Inc()
			}
			return total, nil
		}
	}
	if observability.GlobalMetrics != nil {
		observability.GlobalMetrics.CacheMissesTotal.WithLabelValues("monthly_summary").Inc()
	}

	total, err := s.repo.MonthlySum(s.db, userID, year, month)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, cacheKey, total); err != nil {
		logrus.WithError(err).Warn("Failed to cache monthly summary")
	}

	return total, nil
}

// CategorySummary is a read-through cached per-category aggregation.
func (s *ExpenseService) CategorySummary(userID int) ([]CategoryTotal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cacheKey := cache.CategorySummaryKey(userID)
	cachedData, err := s.cache.Get(ctx, cacheKey)
	if err == nil && cachedData != nil {
		var totals []CategoryTotal
		if json.Unmarshal(cachedData, &totals) == nil {
			if observability.GlobalMetrics != nil {
				observability.GlobalMetrics.CacheHitsTotal.WithLabelValues("category_summary").Inc()
			}
			return totals, nil
		}
	}
	if observability.GlobalMetrics != nil {
		observability.GlobalMetrics.CacheMissesTotal.WithLabelValues("category_summary").Inc()
	}

	totals, err := s.repo.CategoryTotals(s.db, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, totals); err != nil {
		logrus.WithError(err).Warn("Failed to cache category summary")
	}

	return totals, nil
}

// ExportCSV streams every owned expense as CSV rows.
func (s *ExpenseService) ExportCSV(userID int, w io.Writer) error {
	expenses, err := s.repo.GetByUserID(s.db, userID, Filter{})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "amount", "category", "created_at"}); err != nil {
		return err
	}

	for _, e := range expenses {
		record := []string{
			strconv.Itoa(e.ID),
			e.Title,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.Category,
			e.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Anomalies hands the owner's records to the outlier pass and returns the
// flagged ones.
func (s *ExpenseService) Anomalies(userID int) ([]*Expense, error) {
	expenses, err := s.repo.GetByUserID(s.db, userID, Filter{})
	if err != nil {
		return nil, err
	}

	return Outliers(expenses), nil
}

func (s *ExpenseService) invalidate(userID int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate expense cache")
	}
}

// checkBudget publishes an over-budget event when the month holding
// createdAt now exceeds its configured budget.
func (s *ExpenseService) checkBudget(userID int, createdAt time.Time) {
	if s.budgets == nil || s.alerts == nil {
		return
	}

	monthKey := createdAt.Format("2006-01")
	budgetAmount, ok, err := s.budgets.MonthBudget(userID, monthKey)
	if err != nil {
		logrus.WithError(err).Warn("Failed to look up budget for alert check")
		return
	}
	if !ok {
		return
	}

	spent, err := s.repo.MonthlySum(s.db, userID, createdAt.Year(), int(createdAt.Month()))
	if err != nil {
		logrus.WithError(err).Warn("Failed to compute spend for alert check")
		return
	}

	if spent <= budgetAmount {
		return
	}

	if err := s.alerts.PublishBudgetAlert(userID, monthKey, budgetAmount, spent); err != nil {
		logrus.WithError(err).Error("Failed to publish budget alert")
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"month":   monthKey,
		"budget":  budgetAmount,
		"spent":   spent,
	}).Info("Budget alert published")
}
