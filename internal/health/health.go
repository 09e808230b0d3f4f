package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientCounter reports how many websocket clients are subscribed to the
// notification hub.
type ClientCounter interface {
	ClientCount() int
}

type HealthChecker struct {
	db      *pgxpool.Pool
	clients ClientCounter
}

type HealthStatus struct {
	Status              string         `json:"status"`
	Database            DatabaseHealth `json:"database"`
	NotificationClients int            `json:"websocket_clients"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

func NewHealthChecker(db *pgxpool.Pool, clients ClientCounter) *HealthChecker {
	return &HealthChecker{db: db, clients: clients}
}

// CheckBasic pings Postgres and reports the notification hub's subscriber
// count. Redis is deliberately absent: the cache degrades gracefully, so a
// dead Redis never makes the backend unhealthy.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := h.checkDatabase(ctx)

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	result := HealthStatus{
		Status:   status,
		Database: dbHealth,
	}
	if h.clients != nil {
		result.NotificationClients = h.clients.ClientCount()
	}
	return result
}

func (h *HealthChecker) checkDatabase(ctx context.Context) DatabaseHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	status := "healthy"
	if err != nil {
		status = "unhealthy"
	}
	return DatabaseHealth{
		Status:       status,
		ResponseTime: responseTime,
	}
}
