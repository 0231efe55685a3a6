package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/phambaophuc/device-mockup/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Compositor renders a mockup from screenshot bytes.
type Compositor interface {
	Composite(ctx context.Context, screenshot []byte, modelKey, color string) (*models.Mockup, error)
}

// Storage is the blob and job-status backend used by workers.
type Storage interface {
	Download(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
	SaveJob(ctx context.Context, job *models.MockupJob) error
}

// AuditLog records finished mockups.
type AuditLog interface {
	Record(ctx context.Context, rec models.AuditRecord) error
}

type QueueService struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	logger     *zap.Logger
	queueName  string
	compositor Compositor
	storage    Storage
	audit      AuditLog
	workers    sync.WaitGroup
}

func NewQueueService(
	rabbitmqURL string,
	queueName string,
	compositor Compositor,
	storage Storage,
	audit AuditLog,
	logger *zap.Logger,
) (*QueueService, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// One unacknowledged job per consumer keeps large renders evenly spread.
	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &QueueService{
		conn:       conn,
		channel:    channel,
		logger:     logger,
		queueName:  queueName,
		compositor: compositor,
		storage:    storage,
		audit:      audit,
	}, nil
}

// Close closes the queue connection
func (q *QueueService) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
