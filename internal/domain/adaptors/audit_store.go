package adaptors

import (
	"context"
	"website_auditor/internal/domain/models"
)

// AuditStore persists audits. Update applies status and fields atomically and
// rejects transitions not allowed by models.CanTransition.
type AuditStore interface {
	Create(ctx context.Context, audit *models.Audit) (string, error)
	Get(ctx context.Context, id string) (*models.Audit, error)
	Update(ctx context.Context, id string, update models.AuditUpdate) error
}
