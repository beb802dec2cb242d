package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

// HandleAutoPostTask publishes every remaining draft for the user in the
// background. Per-draft failures are recorded in history by the publish
// workflow, so the task itself only fails on payload or listing errors.
func (j *Queue) HandleAutoPostTask(ctx context.Context, task *asynq.Task) error {
	var payload AutoPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.publisher.PublishDrafts(ctx, payload.UserID)
}
