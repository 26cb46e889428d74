package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/pkg/config"
)

// NewServer creates the asynq worker server consuming the collection queue.
func NewServer(redisCfg *config.RedisConfig, workerCfg *config.WorkerConfig) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Address(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			Concurrency: workerCfg.Concurrency,
			Queues: map[string]int{
				workerCfg.Queue: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().
					Err(err).
					Str("type", task.Type()).
					Msg("Task processing error")
			}),
		},
	)
}
