package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"faktura/internal/tasks/rate"
	"faktura/internal/utils/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// TaskClient handles task enqueuing with improved error handling and context support
type TaskClient struct {
	client       *asynq.Client
	logger       *logger.Logger
	redisOptions *redis.Options
	redisClient  *redis.Client
}

func (c *TaskClient) GetClient() *asynq.Client {
	return c.client
}

// RedisClient exposes the shared redis connection for rate limiting.
func (c *TaskClient) RedisClient() *redis.Client {
	return c.redisClient
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(redisAddr, username, password string, db int) *TaskClient {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	}

	redisClient := redis.NewClient(
		&redis.Options{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
	)

	return &TaskClient{
		client: asynq.NewClient(redisOpt),
		redisOptions: &redis.Options{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		redisClient: redisClient,
		logger:      logger.New("TASKS"),
	}
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}

// GetBusinessQueueName names the per-tenant queue for invoice delivery.
func GetBusinessQueueName(businessID string) string {
	return fmt.Sprintf("invoice:business:%s", businessID)
}

// DeliverPayload is the payload of an invoice delivery task.
type DeliverPayload struct {
	InvoiceID  string `json:"invoice_id"`
	BusinessID string `json:"business_id"`
}

// EnqueueInvoiceDelivery queues delivery of a sent invoice. Each
// business is rate limited so one tenant's burst cannot starve the
// delivery queue; over-limit deliveries are deferred, not dropped.
func (c *TaskClient) EnqueueInvoiceDelivery(ctx context.Context, invoiceID, businessID string) error {
	limiter := rate.NewQueueRateLimiter(c.redisClient, rate.QueueConfig{
		Name: GetBusinessQueueName(businessID),
		RateLimit: rate.RateLimit{
			Window:  time.Minute,
			MaxJobs: 30,
		},
	})

	allowed, err := limiter.Allow(ctx, businessID)
	if err != nil {
		return fmt.Errorf("rate limit check failed: %w", err)
	}

	payload, err := json.Marshal(DeliverPayload{InvoiceID: invoiceID, BusinessID: businessID})
	if err != nil {
		return err
	}

	opts := []asynq.Option{
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutShort),
	}
	if !allowed {
		opts = append(opts, asynq.ProcessIn(time.Minute))
	}

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(TaskTypeInvoiceDeliver, payload), opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue delivery: %w", err)
	}

	c.logger.Info("enqueued delivery of invoice %s as %s", invoiceID, info.ID)
	return nil
}
