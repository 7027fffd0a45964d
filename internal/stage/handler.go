package stage

import (
	"context"

	"bleep/internal/queue"
)

// Handler describes the contract the processor engine needs from each phase.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}
