package worker

import (
	"expense_tracker/internal/budget"

	"github.com/sirupsen/logrus"
)

// notifyUser delivers the alert to the user. Delivery is a log line for now;
// an email or push channel plugs in here without touching the consume loop.
func notifyUser(event *budget.AlertEvent, workerID int) {
	logrus.WithFields(logrus.Fields{
		"worker":  workerID,
		"user_id": event.UserID,
		"month":   event.Month,
		"budget":  event.BudgetAmount,
		"spent":   event.Spent,
		"over_by": event.Spent - event.BudgetAmount,
	}).Warn("Budget exceeded notification")
}
