package models

import "time"

// HealthCheck is the body of the health endpoint. Services maps each backend
// to "healthy", "not configured" or an "unhealthy: ..." reason.
type HealthCheck struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]string      `json:"services"`
	Queue     *QueueStats            `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// QueueStats describes the async job queue.
type QueueStats struct {
	Name      string `json:"name"`
	Pending   int    `json:"pending"`
	Consumers int    `json:"consumers"`
}
