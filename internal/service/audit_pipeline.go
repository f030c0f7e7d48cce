package service

import (
	"context"
	"fmt"
	"time"
	"website_auditor/internal/domain/adaptors"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/pkg/errors"
	"website_auditor/internal/pkg/metrics"
	"website_auditor/internal/service/extractors"
	"website_auditor/internal/service/scoring"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultPipelineTimeout = 60 * time.Second

	// persistTimeout bounds the final write, which runs even after the
	// pipeline context is done.
	persistTimeout = 10 * time.Second

	shutdownMessage = `cancelled: audit service is shutting down`
)

type PipelineConfig struct {
	Timeout time.Duration
}

// AuditPipeline drives one audit through pending -> processing ->
// completed|failed. Only the fetch step is fatal; extractor and link probe
// failures degrade individual facts.
type AuditPipeline struct {
	store      adaptors.AuditStore
	fetcher    adaptors.PageFetcher
	extractors []extractors.Extractor
	links      *LinkChecker
	scorer     *scoring.Engine
	timeout    time.Duration
	log        *log.Logger
	now        func() time.Time
}

func NewAuditPipeline(
	store adaptors.AuditStore,
	fetcher adaptors.PageFetcher,
	extractorList []extractors.Extractor,
	links *LinkChecker,
	scorer *scoring.Engine,
	cfg PipelineConfig,
	log *log.Logger,
) *AuditPipeline {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPipelineTimeout
	}
	return &AuditPipeline{
		store:      store,
		fetcher:    fetcher,
		extractors: extractorList,
		links:      links,
		scorer:     scorer,
		timeout:    cfg.Timeout,
		log:        log,
		now:        time.Now,
	}
}

// Run processes the audit with the given id. The returned error is non-nil
// only when the store could not be read or written; audit failures are
// recorded on the audit itself.
func (p *AuditPipeline) Run(ctx context.Context, auditID string) error {
	start := p.now()
	logger := p.log.WithContext(ctx).WithField(`audit_id`, auditID)

	audit, err := p.store.Get(ctx, auditID)
	if err != nil {
		return &models.PersistenceError{AuditID: auditID, Op: `get`, Cause: err}
	}
	logger = logger.WithField(`url`, audit.WebsiteURL)

	if err := p.store.Update(ctx, auditID, models.AuditUpdate{Status: models.StatusProcessing}); err != nil {
		return &models.PersistenceError{AuditID: auditID, Op: `claim`, Cause: err}
	}
	logger.Info(`audit processing started`)

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results, summary, runErr := p.execute(runCtx, audit)

	// The terminal write must land even if the run context is done.
	persistCtx, cancelPersist := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancelPersist()
	completedAt := p.now()

	var update models.AuditUpdate
	if runErr != nil {
		message := p.failureMessage(ctx, runCtx, runErr)
		logger.WithError(runErr).WithField(`reason`, message).Warn(`audit failed`)
		update = models.AuditUpdate{Status: models.StatusFailed, Error: message, CompletedAt: &completedAt}
	} else {
		logger.WithField(`score`, summary.Score).Info(`audit completed`)
		update = models.AuditUpdate{Status: models.StatusCompleted, Results: results, Summary: summary, CompletedAt: &completedAt}
	}

	metrics.AuditsFinishedTotal.WithLabelValues(string(update.Status)).Inc()
	metrics.AuditPipelineDuration.WithLabelValues(string(update.Status)).Observe(time.Since(start).Seconds())

	if err := p.store.Update(persistCtx, auditID, update); err != nil {
		logger.WithError(err).Error(`failed to persist audit result`)
		return &models.PersistenceError{AuditID: auditID, Op: string(update.Status), Cause: err}
	}
	return nil
}

func (p *AuditPipeline) execute(ctx context.Context, audit *models.Audit) (results *models.FactBundle, summary *models.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			results, summary = nil, nil
			err = errors.Errorf(`unexpected panic: %v`, r)
		}
	}()

	res, err := p.fetcher.Fetch(ctx, audit.WebsiteURL)
	if err != nil {
		return nil, nil, err
	}

	page, err := extractors.NewPage(res)
	if err != nil {
		return nil, nil, err
	}

	results, err = extractors.Run(ctx, page, p.extractors, p.log)
	if err != nil {
		return nil, nil, err
	}

	if results.Links != nil {
		checked, err := p.links.Check(ctx, results.Links.Links)
		if err != nil {
			return nil, nil, err
		}
		results.Links.Links = checked
		results.Links.Broken = BrokenLinks(checked)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return results, p.scorer.Score(results), nil
}

// failureMessage is what clients see in Audit.Error. It never contains
// locations or stack traces.
func (p *AuditPipeline) failureMessage(parent, run context.Context, err error) string {
	switch {
	case parent.Err() != nil:
		return shutdownMessage
	case errors.Is(run.Err(), context.DeadlineExceeded):
		return fmt.Sprintf(`timeout: %v after %s`, models.ErrPipelineTimeout, p.timeout)
	}

	var fe *models.FetchError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return errors.Message(err)
}
