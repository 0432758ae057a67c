package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"expense_tracker/internal/budget"
	"expense_tracker/internal/observability"
	"expense_tracker/internal/queue"
	"expense_tracker/internal/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

func republishWithRetry(ch *amqp.Channel, msg *amqp.Delivery, retryCount int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	headers := amqp.Table{}
	if msg.Headers != nil {
		headers = msg.Headers
	}
	headers["x-retry-count"] = retryCount

	return ch.PublishWithContext(
		ctx,
		"",             // exchange
		msg.RoutingKey, // routing key (queue name)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
		},
	)
}

// StartWorker consumes over-budget events and records each one as a
// delivered alert. Failed recordings are requeued with a retry header and
// dropped after three attempts.
func StartWorker(conn *amqp.Connection, db *sql.DB, repo budget.BudgetRepositoryInterface, id int) {
	ch, err := conn.Channel()
	if err != nil {
		logrus.Fatalf("Worker %d failed to open channel: %v", id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		logrus.Fatalf("Worker %d failed to set QoS: %v", id, err)
	}

	msgs, err := ch.Consume(
		queue.AlertQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logrus.Fatalf("Worker %d failed to start consuming messages: %v", id, err)
		return
	}

	logrus.Infof("Worker %d started", id)

	for msg := range msgs {
		observability.GlobalMetrics.QueueMessagesConsumed.WithLabelValues(queue.AlertQueue).Inc()

		var event budget.AlertEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			logrus.Error("invalid alert payload")
			observability.GlobalMetrics.AlertsFailedTotal.WithLabelValues("invalid_payload").Inc()
			msg.Nack(false, false)
			continue
		}

		retryCount := int32(0)
		if msg.Headers != nil {
			if count, ok := msg.Headers["x-retry-count"].(int32); ok {
				retryCount = count
			}
		}

		logrus.Infof(
			"Worker %d handling budget alert for user=%d month=%s (retry: %d)",
			id,
			event.UserID,
			event.Month,
			retryCount,
		)

		startTime := time.Now()

		err := utils.WithTransaction(db, func(tx *sql.Tx) error {
			_, err := repo.CreateAlert(tx, &budget.Alert{
				UserID:       event.UserID,
				Month:        event.Month,
				BudgetAmount: event.BudgetAmount,
				Spent:        event.Spent,
			})
			return err
		})

		observability.GlobalMetrics.AlertHandlingDuration.Observe(time.Since(startTime).Seconds())

		if err != nil {
			logrus.WithError(err).Error("Failed to record budget alert")
			observability.GlobalMetrics.AlertsProcessedTotal.WithLabelValues("failed").Inc()

			if retryCount >= 3 {
				logrus.Errorf("Worker %d: dropping alert for user=%d after max retries", id, event.UserID)
				observability.GlobalMetrics.AlertsFailedTotal.WithLabelValues("max_retries").Inc()
				msg.Nack(false, false)
				continue
			}

			logrus.Infof("Worker %d: alert recording failed, requeuing (retry %d/3)", id, retryCount+1)

			if err := republishWithRetry(ch, &msg, retryCount+1); err != nil {
				logrus.WithError(err).Error("Failed to republish alert")
				observability.GlobalMetrics.AlertsFailedTotal.WithLabelValues("republish_error").Inc()
				msg.Nack(false, false)
				continue
			}

			observability.GlobalMetrics.QueueMessagesPublished.WithLabelValues(queue.AlertQueue).Inc()
			msg.Ack(false)
			continue
		}

		notifyUser(&event, id)

		observability.GlobalMetrics.AlertsProcessedTotal.WithLabelValues("success").Inc()
		msg.Ack(false)
	}
}
