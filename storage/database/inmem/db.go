package inmemdb

import (
	"sync"

	"github.com/trezcool/classreport/core/chat"
)

type (
	DB struct {
		message *messageTable
		block   *blockTable
	}

	messageTable struct {
		sync.RWMutex
		table map[string][]chat.Message // by group
	}

	blockTable struct {
		sync.RWMutex
		table map[string]chat.Block
	}
)

func Open() *DB {
	return &DB{
		message: &messageTable{table: make(map[string][]chat.Message)},
		block:   &blockTable{table: make(map[string]chat.Block)},
	}
}
