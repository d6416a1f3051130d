package chat

import "time"

type BlockState string

const (
	StateOpen    BlockState = "open"
	StateBlocked BlockState = "blocked"
)

// Block is recorded when the model ends a group's conversation.
type Block struct {
	GroupID   string    `json:"groupId" db:"group_id"`
	Message   string    `json:"message" db:"message"`
	BlockedAt time.Time `json:"blockedAt" db:"blocked_at"` // UTC
}

func (b Block) ExpiresAt(cooldown time.Duration) time.Time {
	return b.BlockedAt.Add(cooldown)
}

// ActiveAt reports whether the block still holds at now.
func (b Block) ActiveAt(now time.Time, cooldown time.Duration) bool {
	return now.Before(b.ExpiresAt(cooldown))
}

type BlockStatus struct {
	State     BlockState `json:"state"`
	Message   string     `json:"message,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (bs BlockStatus) Blocked() bool {
	return bs.State == StateBlocked
}
