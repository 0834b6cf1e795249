package app

import (
	"github.com/jonboulle/clockwork"

	"github.com/victorcov/order-worker/internal/service/pipeline"
)

// BuildPipeline собирает оркестратор и планировщик повторов из набора
// зависимостей. clock позволяет подменить время в тестах; nil — реальные часы.
func BuildPipeline(deps *Dependencies, cfg Config, clock clockwork.Clock) (pipeline.Orchestrator, *pipeline.Scheduler) {
	scheduler := pipeline.NewSchedulerWithoutMetrics(
		deps.Retries,
		deps.Journal,
		cfg.SchedulerConfig(),
		clock,
		deps.Logger,
	)
	orchestrator := pipeline.NewOrchestratorWithoutMetrics(
		deps.Products,
		deps.Clients,
		deps.Orders,
		deps.Locks,
		deps.Retries,
		scheduler,
		cfg.WaitTimeout,
		cfg.LeaseTimeout,
		deps.Logger,
	)
	scheduler.Bind(orchestrator)
	return orchestrator, scheduler
}
