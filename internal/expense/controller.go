package expense

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"expense_tracker/internal/auth"

	"github.com/gin-gonic/gin"
)

type ExpenseController struct {
	service ExpenseServiceInterface
}

func NewExpenseController(service ExpenseServiceInterface) *ExpenseController {
	return &ExpenseController{
		service: service,
	}
}

// Amount is a pointer so a zero amount still satisfies required; the field
// must be present, not non-zero.
type expenseRequest struct {
	Title    string   `json:"title" binding:"required,max=100"`
	Amount   *float64 `json:"amount" binding:"required"`
	Category string   `json:"category" binding:"max=50"`
}

// CreateExpense handles expense creation for the authenticated owner
func (ec *ExpenseController) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	e, err := ec.service.Create(userID, req.Title, *req.Amount, req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
		return
	}

	c.JSON(http.StatusCreated, e)
}

// ListExpenses returns the owner's expenses, optionally paginated with
// ?page= and ?page_size=
func (ec *ExpenseController) ListExpenses(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var f Filter
	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
			return
		}
		f.Page = page
	}
	if v := c.Query("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page_size"})
			return
		}
		f.PageSize = size
	}

	ec.respondWithList(c, userID, f)
}

// UpdateExpense replaces the mutable fields of an owned expense
func (ec *ExpenseController) UpdateExpense(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense ID"})
		return
	}

	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	e, err := ec.service.Update(userID, id, req.Title, *req.Amount, req.Category)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
		return
	}

	c.JSON(http.StatusOK, e)
}

// DeleteExpense removes an owned expense
func (ec *ExpenseController) DeleteExpense(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense ID"})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := ec.service.Delete(userID, id); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}

// FilterExpenses filters by exact category: ?category=
func (ec *ExpenseController) FilterExpenses(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ec.respondWithList(c, userID, Filter{Category: c.Query("category")})
}

// SearchExpenses matches a case-insensitive title substring: ?q=
func (ec *ExpenseController) SearchExpenses(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ec.respondWithList(c, userID, Filter{TitleQuery: c.Query("q")})
}

// ExpensesByDate filters by inclusive creation-time range: ?from=&to=
func (ec *ExpenseController) ExpensesByDate(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var f Filter
	if v := c.Query("from"); v != "" {
		t, err := parseTimestamp(v, false)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseTimestamp(v, true)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}
		f.To = &t
	}

	ec.respondWithList(c, userID, f)
}

// MonthlySummary returns the owner's month total: ?year=&month=
func (ec *ExpenseController) MonthlySummary(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	year, month, ok := yearMonthParams(c)
	if !ok {
		return
	}

	total, err := ec.service.MonthlySummary(userID, year, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":          year,
		"month":         month,
		"total_expense": total,
	})
}

// CategorySummary returns the owner's spend aggregated per category
func (ec *ExpenseController) CategorySummary(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	totals, err := ec.service.CategorySummary(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": totals,
		"count":      len(totals),
	})
}

// Anomalies returns expenses flagged by the outlier pass
func (ec *ExpenseController) Anomalies(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	flagged, err := ec.service.Anomalies(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to detect anomalies"})
		return
	}

	if flagged == nil {
		flagged = []*Expense{}
	}

	c.JSON(http.StatusOK, gin.H{
		"anomalies": flagged,
		"count":     len(flagged),
	})
}

// ExportExpenses streams the owner's expenses as a CSV attachment
func (ec *ExpenseController) ExportExpenses(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// Build the document before touching the response so a storage error
	// still yields a clean JSON 500 instead of a truncated CSV.
	var buf bytes.Buffer
	if err := ec.service.ExportCSV(userID, &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export expenses"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="expenses.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// Categories serves the static category list; no auth required
func (ec *ExpenseController) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": Categories})
}

func (ec *ExpenseController) respondWithList(c *gin.Context, userID int, f Filter) {
	expenses, err := ec.service.List(userID, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get expenses"})
		return
	}

	if expenses == nil {
		expenses = []*Expense{}
	}

	c.JSON(http.StatusOK, gin.H{
		"expenses": expenses,
		"count":    len(expenses),
	})
}

func yearMonthParams(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return 0, 0, false
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return 0, 0, false
	}

	return year, month, true
}

// parseTimestamp accepts RFC3339 or a plain date and produces the bound the
// repository compares against. Filter.To is exclusive, so a plain date used
// as the upper bound becomes the following midnight, which covers every
// instant of that day; an exact RFC3339 upper bound is nudged forward so the
// named instant itself stays inside the range.
func parseTimestamp(s string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		if upper {
			t = t.Add(time.Nanosecond)
		}
		return t, nil
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
