package report

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/trezcool/classreport/core"
)

// Source provides the raw group blocks bundled with the deployment.
type Source interface {
	RawGroups() ([]RawGroup, error)
}

type storeState struct {
	once   sync.Once
	groups []GroupData
	index  map[string]int
	err    error
}

// Store memoizes the parsed groups for the lifetime of the process.
// The first read parses every raw block; later reads never reparse nor lock.
type Store struct {
	src    Source
	parser *Parser
	logger core.Logger
	state  atomic.Pointer[storeState]
}

func NewStore(src Source, parser *Parser, logger core.Logger) *Store {
	s := &Store{src: src, parser: parser, logger: logger}
	s.state.Store(new(storeState))
	return s
}

func (s *Store) load() *storeState {
	st := s.state.Load()
	st.once.Do(func() {
		s.logger.Info("parsing group data for the first time and caching...")
		raws, err := s.src.RawGroups()
		if err != nil {
			st.err = core.NewShutdownError(errors.Wrap(err, "loading raw group data").Error())
			return
		}
		st.groups = s.parser.ParseAll(raws)
		st.index = make(map[string]int, len(st.groups))
		for i, gd := range st.groups {
			if _, ok := st.index[gd.GroupName]; !ok {
				st.index[gd.GroupName] = i
			}
		}
	})
	return st
}

// All returns every parsed group in source order. The result is shared and must not be modified.
func (s *Store) All() ([]GroupData, error) {
	st := s.load()
	return st.groups, st.err
}

// Group returns the parsed group named name.
func (s *Store) Group(name string) (GroupData, error) {
	st := s.load()
	if st.err != nil {
		return GroupData{}, st.err
	}
	i, ok := st.index[name]
	if !ok {
		return GroupData{}, errors.Wrap(ErrGroupNotFound, name)
	}
	return st.groups[i], nil
}

// Reset drops the parsed groups; the next read parses the source again.
func (s *Store) Reset() {
	s.state.Store(new(storeState))
}
