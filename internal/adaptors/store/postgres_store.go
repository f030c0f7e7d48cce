package store

import (
	"context"
	"encoding/json"
	"time"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS audits (
	id             TEXT PRIMARY KEY,
	website_url    TEXT NOT NULL,
	email          TEXT NOT NULL,
	name           TEXT NOT NULL,
	company_domain TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	results        JSONB,
	summary        JSONB,
	error          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS audits_status_idx ON audits (status);
`

// PostgresStore persists audits in a single PostgreSQL table. Results and
// summary are stored as JSONB documents.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *log.Logger
}

// NewPostgresStore connects, pings and makes sure the audits table exists.
func NewPostgresStore(ctx context.Context, databaseURL string, log *log.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, `failed to connect to database`)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, `failed to ping database`)
	}

	s := &PostgresStore{pool: pool, log: log}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, `failed to create audits schema`)
	}
	return nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) Create(ctx context.Context, audit *models.Audit) (string, error) {
	if audit == nil {
		return "", errors.New(`audit is nil`)
	}

	id := audit.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := audit.Status
	if status == "" {
		status = models.StatusPending
	}
	createdAt := audit.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO audits (id, website_url, email, name, company_domain, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, audit.WebsiteURL, audit.Email, audit.Name, audit.CompanyDomain, string(status), createdAt,
	)
	if err != nil {
		return "", errors.Wrap(err, `failed to create audit`)
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Audit, error) {
	var (
		audit            models.Audit
		status           string
		results, summary []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, website_url, email, name, company_domain, status, results, summary, error, created_at, completed_at
		 FROM audits WHERE id = $1`,
		id,
	).Scan(&audit.ID, &audit.WebsiteURL, &audit.Email, &audit.Name, &audit.CompanyDomain,
		&status, &results, &summary, &audit.Error, &audit.CreatedAt, &audit.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAuditNotFound
		}
		return nil, errors.Wrap(err, `failed to get audit `+id)
	}
	audit.Status = models.AuditStatus(status)

	if len(results) > 0 {
		audit.Results = &models.FactBundle{}
		if err := json.Unmarshal(results, audit.Results); err != nil {
			return nil, errors.Wrap(err, `failed to decode audit results`)
		}
	}
	if len(summary) > 0 {
		audit.Summary = &models.Summary{}
		if err := json.Unmarshal(summary, audit.Summary); err != nil {
			return nil, errors.Wrap(err, `failed to decode audit summary`)
		}
	}
	return &audit, nil
}

// Update applies the transition only when the stored status is one it may
// legally come from, so two writers can never both claim an audit.
func (s *PostgresStore) Update(ctx context.Context, id string, update models.AuditUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	results, err := marshalNullable(update.Results)
	if err != nil {
		return errors.Wrap(err, `failed to encode audit results`)
	}
	summary, err := marshalNullable(update.Summary)
	if err != nil {
		return errors.Wrap(err, `failed to encode audit summary`)
	}

	allowed := models.AllowedFrom(update.Status)
	from := make([]string, 0, len(allowed))
	for _, st := range allowed {
		from = append(from, string(st))
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE audits
		 SET status = $2, results = $3, summary = $4, error = $5, completed_at = $6
		 WHERE id = $1 AND status = ANY($7)`,
		id, string(update.Status), results, summary, update.Error, update.CompletedAt, from,
	)
	if err != nil {
		return errors.Wrap(err, `failed to update audit `+id)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = s.pool.QueryRow(ctx, `SELECT status FROM audits WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrAuditNotFound
	}
	if err != nil {
		return errors.Wrap(err, `failed to read audit status `+id)
	}
	return errors.Wrap(models.ErrInvalidTransition, current+` -> `+string(update.Status))
}

func marshalNullable(v any) ([]byte, error) {
	switch t := v.(type) {
	case *models.FactBundle:
		if t == nil {
			return nil, nil
		}
	case *models.Summary:
		if t == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
