package store

import (
	"context"
	"sync"
	"testing"
	"time"
	"website_auditor/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, &models.Audit{WebsiteURL: "https://example.com", Email: "a@example.com", Name: "Ann"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	audit, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, audit.Status)
	assert.Equal(t, "https://example.com", audit.WebsiteURL)
	assert.False(t, audit.CreatedAt.IsZero())

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrAuditNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, err := s.Create(ctx, &models.Audit{WebsiteURL: "https://example.com"})
	require.NoError(t, err)

	audit, err := s.Get(ctx, id)
	require.NoError(t, err)
	audit.Status = models.StatusCompleted

	again, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Status)
}

func TestMemoryStore_Transitions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, err := s.Create(ctx, &models.Audit{WebsiteURL: "https://example.com"})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, id, models.AuditUpdate{Status: models.StatusProcessing}))

	// processing cannot go back to pending
	err = s.Update(ctx, id, models.AuditUpdate{Status: models.StatusPending})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	now := time.Now()
	require.NoError(t, s.Update(ctx, id, models.AuditUpdate{
		Status:      models.StatusCompleted,
		Results:     &models.FactBundle{},
		Summary:     &models.Summary{Score: 80},
		CompletedAt: &now,
	}))

	// terminal state is final
	err = s.Update(ctx, id, models.AuditUpdate{Status: models.StatusFailed, Error: "late"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	audit, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, audit.Status)
	assert.Equal(t, 80, audit.Summary.Score)
	assert.Empty(t, audit.Error)
}

func TestMemoryStore_RejectsInconsistentUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, err := s.Create(ctx, &models.Audit{WebsiteURL: "https://example.com"})
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, id, models.AuditUpdate{Status: models.StatusProcessing}))

	err = s.Update(ctx, id, models.AuditUpdate{Status: models.StatusCompleted})
	assert.Error(t, err)

	audit, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, audit.Status)
}

func TestMemoryStore_UpdateUnknown(t *testing.T) {
	s := NewMemoryStore()
	err := s.Update(context.Background(), "nope", models.AuditUpdate{Status: models.StatusProcessing})
	assert.ErrorIs(t, err, models.ErrAuditNotFound)
}

func TestMemoryStore_ConcurrentClaim(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, err := s.Create(ctx, &models.Audit{WebsiteURL: "https://example.com"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Update(ctx, id, models.AuditUpdate{Status: models.StatusProcessing}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
