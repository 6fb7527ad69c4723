package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nicocardiel/repdoc/internal/domain"
)

// IDSet tracks every identifier in use so that new ones never collide with
// degrees, subjects, applicants or earlier ledger entries.
type IDSet struct {
	used map[string]struct{}
	gen  func() string
}

func NewIDSet(ids []string) *IDSet {
	s := &IDSet{
		used: make(map[string]struct{}, len(ids)),
		gen:  func() string { return uuid.New().String() },
	}
	for _, id := range ids {
		s.used[id] = struct{}{}
	}
	return s
}

// Add records id, failing if it is already in use.
func (s *IDSet) Add(id string) error {
	if _, ok := s.used[id]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateID, id)
	}
	s.used[id] = struct{}{}
	return nil
}

// Reserve records id whether or not it was already known.
func (s *IDSet) Reserve(id string) {
	s.used[id] = struct{}{}
}

func (s *IDSet) Contains(id string) bool {
	_, ok := s.used[id]
	return ok
}

func (s *IDSet) Len() int { return len(s.used) }

// New draws identifiers until one is unused, records it and returns it.
func (s *IDSet) New() string {
	for {
		id := s.gen()
		if _, ok := s.used[id]; ok {
			continue
		}
		s.used[id] = struct{}{}
		return id
	}
}
