package queue

import (
	"github.com/maheshrc27/contentpilot/internal/service"
)

type Queue struct {
	publisher service.PublishService
}

func NewQueue(publisher service.PublishService) *Queue {
	return &Queue{
		publisher: publisher,
	}
}

const TaskTypeAutoPost = "autopost:user"

type AutoPostPayload struct {
	UserID int64 `json:"user_id"`
}
