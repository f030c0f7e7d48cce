package service

import (
	"context"
	"time"
	"website_auditor/internal/domain/adaptors"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/pkg/errors"
	"website_auditor/internal/pkg/metrics"
	"website_auditor/internal/pkg/worker_pool"

	log "github.com/sirupsen/logrus"
)

type SubmitRequest struct {
	WebsiteURL    string
	Email         string
	Name          string
	CompanyDomain string
}

type Auditor interface {
	SubmitAudit(ctx context.Context, req SubmitRequest) (string, error)
	GetAuditStatus(ctx context.Context, id string) (*models.StatusView, error)
}

// AuditService accepts audits and hands them to the worker pool. Submission
// never waits for the pipeline.
type AuditService struct {
	store    adaptors.AuditStore
	pipeline *AuditPipeline
	pool     *worker_pool.WorkerPool
	log      *log.Logger
}

func NewAuditService(store adaptors.AuditStore, pipeline *AuditPipeline, pool *worker_pool.WorkerPool, log *log.Logger) *AuditService {
	return &AuditService{
		store:    store,
		pipeline: pipeline,
		pool:     pool,
		log:      log,
	}
}

// SubmitAudit stores a pending audit and queues it. When the queue rejects
// the job the audit is marked failed and the id is returned together with
// models.ErrQueueFull or models.ErrShuttingDown.
func (s *AuditService) SubmitAudit(ctx context.Context, req SubmitRequest) (string, error) {
	id, err := s.store.Create(ctx, &models.Audit{
		WebsiteURL:    req.WebsiteURL,
		Email:         req.Email,
		Name:          req.Name,
		CompanyDomain: req.CompanyDomain,
		Status:        models.StatusPending,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		return "", errors.Wrap(err, `failed to create audit`)
	}
	logger := s.log.WithContext(ctx).WithFields(log.Fields{`audit_id`: id, `url`: req.WebsiteURL})

	err = s.pool.SubmitWithDrop(id, func(ctx context.Context) error {
		defer metrics.AuditQueueDepth.Set(float64(s.pool.Pending()))
		return s.pipeline.Run(ctx, id)
	}, s.failDropped)
	metrics.AuditQueueDepth.Set(float64(s.pool.Pending()))
	if err != nil {
		reason := models.ErrQueueFull
		if errors.Is(err, worker_pool.ErrPoolClosed) {
			reason = models.ErrShuttingDown
		}
		logger.WithError(err).Warn(`audit rejected`)

		now := time.Now()
		if uerr := s.store.Update(ctx, id, models.AuditUpdate{
			Status:      models.StatusFailed,
			Error:       `rejected: ` + reason.Error(),
			CompletedAt: &now,
		}); uerr != nil {
			logger.WithError(uerr).Error(`failed to mark rejected audit as failed`)
		}
		metrics.AuditsFinishedTotal.WithLabelValues(string(models.StatusFailed)).Inc()
		return id, reason
	}

	metrics.AuditsSubmittedTotal.Inc()
	logger.Info(`audit submitted`)
	return id, nil
}

func (s *AuditService) GetAuditStatus(ctx context.Context, id string) (*models.StatusView, error) {
	audit, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return audit.View(), nil
}

// failDropped marks an audit that was queued but never picked up before
// shutdown. The pool only calls it with an uncancelable ctx.
func (s *AuditService) failDropped(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	now := time.Now()
	err := s.store.Update(ctx, id, models.AuditUpdate{
		Status:      models.StatusFailed,
		Error:       shutdownMessage,
		CompletedAt: &now,
	})
	if err != nil {
		s.log.WithError(err).WithField(`audit_id`, id).Error(`failed to mark dropped audit as failed`)
		return
	}
	metrics.AuditsFinishedTotal.WithLabelValues(string(models.StatusFailed)).Inc()
	metrics.AuditQueueDepth.Set(float64(s.pool.Pending()))
	s.log.WithField(`audit_id`, id).Warn(`queued audit cancelled by shutdown`)
}

// Shutdown stops accepting audits and waits for queued ones until ctx expires.
func (s *AuditService) Shutdown(ctx context.Context) error {
	return s.pool.Shutdown(ctx)
}
