package store

import (
	"context"
	"sync"
	"time"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/pkg/errors"

	"github.com/google/uuid"
)

// MemoryStore keeps audits in process memory. Reads return copies so callers
// never observe a half-applied update.
type MemoryStore struct {
	audits map[string]*models.Audit
	mu     sync.RWMutex
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		audits: make(map[string]*models.Audit),
		now:    time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, audit *models.Audit) (string, error) {
	if audit == nil {
		return "", errors.New(`audit is nil`)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := audit.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, exists := s.audits[stored.ID]; exists {
		return "", errors.Errorf(`audit %s already exists`, stored.ID)
	}
	if stored.Status == "" {
		stored.Status = models.StatusPending
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	s.audits[stored.ID] = stored
	return stored.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	audit, ok := s.audits[id]
	if !ok {
		return nil, models.ErrAuditNotFound
	}
	return audit.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, update models.AuditUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	audit, ok := s.audits[id]
	if !ok {
		return models.ErrAuditNotFound
	}
	if !models.CanTransition(audit.Status, update.Status) {
		return errors.Wrap(models.ErrInvalidTransition, string(audit.Status)+` -> `+string(update.Status))
	}
	audit.Apply(update)
	return nil
}
