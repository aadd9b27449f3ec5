package storage

import (
	"sync"

	"github.com/radgen/radgen/internal/models"
)

// AnalysisStore holds completed analysis sessions in memory for the
// lifetime of the process.
type AnalysisStore struct {
	sessions map[string]*models.AnalysisSession
	mu       sync.RWMutex
}

func New() *AnalysisStore {
	return &AnalysisStore{
		sessions: make(map[string]*models.AnalysisSession),
	}
}

func (s *AnalysisStore) Get(id string) (*models.AnalysisSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[id]
	return session, exists
}

func (s *AnalysisStore) Set(id string, session *models.AnalysisSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session
}

func (s *AnalysisStore) GetAll() map[string]*models.AnalysisSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*models.AnalysisSession, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

func (s *AnalysisStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
