package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockSweep is the periodic low-stock reconciliation task.
	TaskLowStockSweep = "stock:lowstock_sweep"
)

// NewLowStockSweepTask constructs the sweep task. It carries no payload; the
// sweep always inspects every stock row.
func NewLowStockSweepTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockSweep, nil)
}
