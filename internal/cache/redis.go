package cache

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys for hot list endpoints
const (
	AvailableVehiclesKey = "vehicles:available"
	DashboardSummaryKey  = "dashboard:summary"
)

var client *redis.Client

// Init initializes the Redis connection. The server degrades gracefully when
// Redis is unavailable: every helper is a no-op on a nil client.
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "redis"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetAvailableVehicles returns the cached available-vehicle list if present.
func GetAvailableVehicles(ctx context.Context) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, AvailableVehiclesKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetAvailableVehicles caches the available-vehicle list for 2 minutes.
func SetAvailableVehicles(ctx context.Context, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, AvailableVehiclesKey, data, 2*time.Minute)
}

// InvalidateAvailability drops vehicle availability caches. Called on every
// agreement or vehicle write so stale availability is never served.
func InvalidateAvailability(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, AvailableVehiclesKey, DashboardSummaryKey)
}

// GetDashboardSummary returns the cached dashboard summary if present.
func GetDashboardSummary(ctx context.Context) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, DashboardSummaryKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetDashboardSummary caches the dashboard summary for 5 minutes.
func SetDashboardSummary(ctx context.Context, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, DashboardSummaryKey, data, 5*time.Minute)
}
