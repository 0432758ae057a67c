package budget

import (
	"context"
	"encoding/json"
	"time"

	"expense_tracker/internal/observability"
	"expense_tracker/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AlertPublisher sends over-budget events to the alert queue for the worker
// to deliver.
type AlertPublisher struct {
	conn *amqp.Connection
}

func NewAlertPublisher(conn *amqp.Connection) *AlertPublisher {
	return &AlertPublisher{conn: conn}
}

func (p *AlertPublisher) PublishBudgetAlert(userID int, month string, budgetAmount, spent float64) error {
	body, err := json.Marshal(AlertEvent{
		UserID:       userID,
		Month:        month,
		BudgetAmount: budgetAmount,
		Spent:        spent,
	})
	if err != nil {
		return err
	}

	ch, err := queue.CreateChannel(p.conn)
	if err != nil {
		return err
	}
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ch.PublishWithContext(
		ctx,
		"",               // exchange
		queue.AlertQueue, // routing key (queue name)
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		return err
	}

	if observability.GlobalMetrics != nil {
		observability.GlobalMetrics.QueueMessagesPublished.WithLabelValues(queue.AlertQueue).Inc()
	}

	return nil
}
