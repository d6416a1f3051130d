package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/classreport/core"
)

type (
	// Repository persists group transcripts and conversation blocks.
	Repository interface {
		AppendMessage(msg Message) error
		// QueryMessages returns the transcript of groupID, oldest first.
		QueryMessages(groupID string) ([]Message, error)
		// GetBlock returns ErrBlockNotFound if groupID is not blocked.
		GetBlock(groupID string) (Block, error)
		SaveBlock(block Block) error
		DeleteBlock(groupID string) error
	}

	ServiceConfig struct {
		BlockCooldown time.Duration
		// HistoryTurns bounds the history replayed to the model.
		HistoryTurns int
	}

	// Service runs conversations: it enforces blocks and records transcripts around the Gateway.
	Service struct {
		gw     *Gateway
		repo   Repository
		logger core.Logger
		conf   ServiceConfig
		now    func() time.Time
	}
)

// NewService returns a chat Service. now defaults to time.Now.
func NewService(gw *Gateway, repo Repository, logger core.Logger, conf ServiceConfig, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{gw: gw, repo: repo, logger: logger, conf: conf, now: now}
}

func (svc *Service) Gateway() *Gateway {
	return svc.gw
}

// Ask answers q unless the group is blocked. Both sides of the turn are appended to the transcript.
func (svc *Service) Ask(ctx context.Context, q Question) (Reply, error) {
	if _, err := svc.gw.groups.Group(q.GroupID); err != nil {
		return Reply{}, errors.Wrap(err, "resolving group")
	}

	status, err := svc.BlockStatus(q.GroupID)
	if err != nil {
		return Reply{}, err
	}
	if status.Blocked() {
		return Reply{Blocked: true, Message: status.Message}, nil
	}

	history := q.PriorTurns
	if len(history) == 0 {
		msgs, err := svc.repo.QueryMessages(q.GroupID)
		if err != nil {
			return Reply{}, errors.Wrap(err, "querying transcript")
		}
		history = Turns(msgs)
	}
	history = replayTurns(history, svc.conf.HistoryTurns)

	if err = svc.record(q.GroupID, RoleUser, q.Question); err != nil {
		return Reply{}, err
	}

	res, err := svc.gw.Answer(ctx, q.Question, q.GroupID, history)
	if err != nil {
		return Reply{}, svc.fail(q.GroupID, err)
	}

	if err = svc.record(q.GroupID, RoleModel, res.Text); err != nil {
		return Reply{}, err
	}
	switch res.Kind {
	case KindBlocked:
		block := Block{GroupID: q.GroupID, Message: res.Text, BlockedAt: svc.now().UTC()}
		if err = svc.repo.SaveBlock(block); err != nil {
			return Reply{}, errors.Wrap(err, "saving block")
		}
		svc.logger.Info("conversation ended by the assistant", core.GroupTag{GroupID: q.GroupID})
		return Reply{Blocked: true, Message: res.Text}, nil
	default:
		return Reply{Answer: res.Text}, nil
	}
}

// fail records the user-facing side of model errors in the transcript.
func (svc *Service) fail(groupID string, err error) error {
	var userMsg string
	switch e := errors.Cause(err).(type) {
	case *UpstreamError:
		userMsg = e.UserMessage()
	case *ProtocolDriftError:
		userMsg = e.UserMessage()
	default:
		return err
	}
	svc.logger.Error(fmt.Sprintf("answering question: %v", err), err, core.GroupTag{GroupID: groupID})
	if rErr := svc.record(groupID, RoleModel, userMsg); rErr != nil {
		svc.logger.Error("recording error message", rErr, core.GroupTag{GroupID: groupID})
	}
	return err
}

func (svc *Service) record(groupID string, role Role, content string) error {
	// v7 ids sort by creation, ordering messages sharing a timestamp
	id, err := uuid.NewV7()
	if err != nil {
		return errors.Wrap(err, "generating message id")
	}
	msg := Message{
		ID:        id.String(),
		GroupID:   groupID,
		Role:      role,
		Content:   content,
		Timestamp: svc.now().UTC(),
	}
	return errors.Wrap(svc.repo.AppendMessage(msg), "appending message")
}

// History returns the transcript of groupID, oldest first.
func (svc *Service) History(groupID string) ([]Message, error) {
	if _, err := svc.gw.groups.Group(groupID); err != nil {
		return nil, errors.Wrap(err, "resolving group")
	}
	return svc.repo.QueryMessages(groupID)
}

// BlockStatus reports whether groupID is blocked. Expired blocks are removed.
func (svc *Service) BlockStatus(groupID string) (BlockStatus, error) {
	block, err := svc.repo.GetBlock(groupID)
	if err != nil {
		if errors.Cause(err) == ErrBlockNotFound {
			return BlockStatus{State: StateOpen}, nil
		}
		return BlockStatus{}, errors.Wrap(err, "getting block")
	}

	if !block.ActiveAt(svc.now(), svc.conf.BlockCooldown) {
		if err = svc.repo.DeleteBlock(groupID); err != nil {
			return BlockStatus{}, errors.Wrap(err, "deleting expired block")
		}
		return BlockStatus{State: StateOpen}, nil
	}

	expiresAt := block.ExpiresAt(svc.conf.BlockCooldown)
	return BlockStatus{State: StateBlocked, Message: block.Message, ExpiresAt: &expiresAt}, nil
}

// Unblock lifts the block of groupID, if any.
func (svc *Service) Unblock(groupID string) error {
	return errors.Wrap(svc.repo.DeleteBlock(groupID), "deleting block")
}
