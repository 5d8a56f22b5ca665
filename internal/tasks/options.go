package tasks

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// NextRun reports when a cron expression fires next. The scheduler logs
// it at registration so a bad expression is visible at startup.
func NextRun(expr string) (time.Time, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return schedule.Next(time.Now()), nil
}
