package inmemdb

import (
	"sort"

	"github.com/trezcool/classreport/core/chat"
)

type chatRepository struct {
	messages *messageTable
	blocks   *blockTable
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *DB) *chatRepository {
	return &chatRepository{messages: db.message, blocks: db.block}
}

func (repo *chatRepository) AppendMessage(msg chat.Message) error {
	repo.messages.Lock()
	defer repo.messages.Unlock()

	msg.Timestamp = msg.Timestamp.UTC()
	repo.messages.table[msg.GroupID] = append(repo.messages.table[msg.GroupID], msg)
	return nil
}

func (repo *chatRepository) QueryMessages(groupID string) ([]chat.Message, error) {
	repo.messages.RLock()
	defer repo.messages.RUnlock()

	msgs := make([]chat.Message, len(repo.messages.table[groupID]))
	copy(msgs, repo.messages.table[groupID])
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs, nil
}

func (repo *chatRepository) GetBlock(groupID string) (chat.Block, error) {
	repo.blocks.RLock()
	defer repo.blocks.RUnlock()

	block, ok := repo.blocks.table[groupID]
	if !ok {
		return chat.Block{}, chat.ErrBlockNotFound
	}
	return block, nil
}

func (repo *chatRepository) SaveBlock(block chat.Block) error {
	repo.blocks.Lock()
	defer repo.blocks.Unlock()

	block.BlockedAt = block.BlockedAt.UTC()
	repo.blocks.table[block.GroupID] = block
	return nil
}

func (repo *chatRepository) DeleteBlock(groupID string) error {
	repo.blocks.Lock()
	defer repo.blocks.Unlock()

	delete(repo.blocks.table, groupID)
	return nil
}
