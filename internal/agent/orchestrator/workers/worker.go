// Package workers implements the three capability workers the supervisor
// routes between. A worker never fails its caller: any error becomes
// visible text in the message it appends, so routing can always continue.
package workers

import (
	"context"

	"github.com/tripgram/server/internal/agent/model"
)

// Worker executes one routing step against external services. Each
// execution appends exactly one message attributed to the worker and one
// agents_used entry, cache hits included.
type Worker interface {
	Name() string
	Execute(ctx context.Context, state *model.ConversationState) model.WorkerResult
}
