package chat

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classreport/core"
)

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type (
	// Message is one entry of a group's chat transcript.
	Message struct {
		ID        string    `json:"id" db:"id"`
		GroupID   string    `json:"groupId" db:"group_id"`
		Role      Role      `json:"role" db:"role"`
		Content   string    `json:"content" db:"content"`
		Timestamp time.Time `json:"timestamp" db:"created_at"` // UTC
	}

	Turn struct {
		Role Role   `json:"role" validate:"required,oneof=user model"`
		Text string `json:"text" validate:"notblank"`
	}

	// Question is a chat request coming from the UI layer.
	Question struct {
		Question   string `json:"question" validate:"required"`
		GroupID    string `json:"groupId" validate:"required"`
		PriorTurns []Turn `json:"priorTurns" validate:"omitempty,dive"`
	}

	// Reply is either an answer or a blocked conversation notice.
	Reply struct {
		Answer  string `json:"answer,omitempty"`
		Blocked bool   `json:"blocked,omitempty"`
		Message string `json:"message,omitempty"`
	}
)

func (q *Question) Validate(validate *validator.Validate) error {
	q.Question = core.CleanString(q.Question)
	q.GroupID = core.CleanString(q.GroupID)
	return validate.Struct(q)
}

// Turns converts transcript messages into model history turns.
func Turns(msgs []Message) []Turn {
	turns := make([]Turn, 0, len(msgs))
	for _, msg := range msgs {
		turns = append(turns, Turn{Role: msg.Role, Text: msg.Content})
	}
	return turns
}

func lastTurns(turns []Turn, n int) []Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

// replayTurns keeps the last n turns, without leading model turns: history replayed to the model opens with the user.
func replayTurns(turns []Turn, n int) []Turn {
	turns = lastTurns(turns, n)
	for len(turns) > 0 && turns[0].Role == RoleModel {
		turns = turns[1:]
	}
	return turns
}
