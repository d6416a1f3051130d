package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/classreport/core/chat"
)

type chatRepository struct {
	db *sqlx.DB
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *sqlx.DB) *chatRepository {
	return &chatRepository{db: db}
}

func (repo chatRepository) AppendMessage(msg chat.Message) error {
	q := repo.db.Rebind(`INSERT INTO chat_message (id, group_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := repo.db.Exec(q, msg.ID, msg.GroupID, msg.Role, msg.Content, msg.Timestamp.UTC())
	return errors.Wrap(err, "inserting chat message")
}

func (repo chatRepository) QueryMessages(groupID string) ([]chat.Message, error) {
	msgs := make([]chat.Message, 0)
	q := repo.db.Rebind(`
		SELECT id, group_id, role, content, created_at
		FROM chat_message
		WHERE group_id = ?
		ORDER BY created_at, id`)
	if err := repo.db.Select(&msgs, q, groupID); err != nil {
		return nil, errors.Wrap(err, "selecting chat messages")
	}
	for i := range msgs {
		msgs[i].Timestamp = msgs[i].Timestamp.UTC()
	}
	return msgs, nil
}

func (repo chatRepository) GetBlock(groupID string) (chat.Block, error) {
	var block chat.Block
	q := repo.db.Rebind(`SELECT group_id, message, blocked_at FROM chat_block WHERE group_id = ?`)
	if err := repo.db.Get(&block, q, groupID); err != nil {
		if err == sql.ErrNoRows {
			return chat.Block{}, chat.ErrBlockNotFound
		}
		return chat.Block{}, errors.Wrap(err, "selecting chat block")
	}
	block.BlockedAt = block.BlockedAt.UTC()
	return block, nil
}

func (repo chatRepository) SaveBlock(block chat.Block) error {
	q := repo.db.Rebind(`
		INSERT INTO chat_block (group_id, message, blocked_at) VALUES (?, ?, ?)
		ON CONFLICT (group_id) DO UPDATE SET message = excluded.message, blocked_at = excluded.blocked_at`)
	_, err := repo.db.Exec(q, block.GroupID, block.Message, block.BlockedAt.UTC())
	return errors.Wrap(err, "upserting chat block")
}

func (repo chatRepository) DeleteBlock(groupID string) error {
	_, err := repo.db.Exec(repo.db.Rebind(`DELETE FROM chat_block WHERE group_id = ?`), groupID)
	return errors.Wrap(err, "deleting chat block")
}
