package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const jobMessageType = "mockup.render"

// PublishJob enqueues a persistent render message for job.
func (q *QueueService) PublishJob(ctx context.Context, job *models.MockupJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         jobMessageType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    job.ID,
			Headers: amqp.Table{
				"model": job.Model,
				"color": job.Color,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job %s: %w", job.ID, err)
	}

	q.logger.Info("Job published to queue",
		zap.String("job_id", job.ID),
		zap.String("model", job.Model),
		zap.String("color", job.Color))
	return nil
}
