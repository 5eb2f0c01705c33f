package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ProcessingStatus mirrors a document's pipeline state so status polls
// do not hit the database between upload and completion.
type ProcessingStatus struct {
	DocumentId uuid.UUID
	Status     string
	Error      string
	UpdatedAt  time.Time
}

type ProcessingStatusStore struct {
	cache *cache.Cache
}

func NewProcessingStatusStore() *ProcessingStatusStore {
	return &ProcessingStatusStore{
		cache: cache.New(30*time.Minute, 10*time.Minute),
	}
}

func (s *ProcessingStatusStore) Set(documentId uuid.UUID, status, errMsg string) {
	s.cache.Set(documentId.String(), &ProcessingStatus{
		DocumentId: documentId,
		Status:     status,
		Error:      errMsg,
		UpdatedAt:  time.Now(),
	}, cache.DefaultExpiration)
}

func (s *ProcessingStatusStore) Get(documentId uuid.UUID) (*ProcessingStatus, bool) {
	v, ok := s.cache.Get(documentId.String())
	if !ok {
		return nil, false
	}
	return v.(*ProcessingStatus), true
}

func (s *ProcessingStatusStore) Delete(documentId uuid.UUID) {
	s.cache.Delete(documentId.String())
}
