package tasks

import "time"

// Task Types
const (
	// Invoice workflow tasks
	TaskTypeInvoiceOverdueSweep = "invoice:overdue_sweep"
	TaskTypeInvoiceDeliver      = "invoice:deliver"

	// Auth housekeeping tasks
	TaskTypeAuthPurge = "auth:purge_expired"
)

// Task Queues
const (
	QueueCritical = "critical" // For time-sensitive tasks like invoice delivery
	QueueDefault  = "default"  // For regular tasks
	QueueLow      = "low"      // For background tasks like cleanup
)

// Task Priorities (1-10, higher is more important)
const (
	PriorityCritical = 10
	PriorityHigh     = 8
	PriorityNormal   = 5
	PriorityLow      = 3
	PriorityBG       = 1
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
	TimeoutLong   = 30 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 5
	RetryDefault = 3
	RetryMin     = 1
)
