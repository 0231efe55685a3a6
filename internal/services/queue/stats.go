package queue

import (
	"fmt"

	"github.com/phambaophuc/device-mockup/internal/models"
)

// Stats reports the depth of the job queue and how many workers consume it.
func (q *QueueService) Stats() (*models.QueueStats, error) {
	info, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue %s: %w", q.queueName, err)
	}

	return &models.QueueStats{
		Name:      info.Name,
		Pending:   info.Messages,
		Consumers: info.Consumers,
	}, nil
}

// HealthCheck reports "healthy" or why the broker cannot take jobs.
func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return "unhealthy: connection closed"
	case q.channel == nil:
		return "unhealthy: channel not available"
	default:
		return "healthy"
	}
}
