package models

import (
	"time"
	"website_auditor/internal/pkg/errors"
)

type AuditStatus string

const (
	StatusPending    AuditStatus = "pending"
	StatusProcessing AuditStatus = "processing"
	StatusCompleted  AuditStatus = "completed"
	StatusFailed     AuditStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s AuditStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether an audit may move from one status to another.
// pending -> failed is only used when a job is rejected before a worker claims it.
func CanTransition(from, to AuditStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

// AllowedFrom lists the statuses from which an audit may move to "to".
func AllowedFrom(to AuditStatus) []AuditStatus {
	var from []AuditStatus
	for _, s := range []AuditStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed} {
		if CanTransition(s, to) {
			from = append(from, s)
		}
	}
	return from
}

type Audit struct {
	ID            string      `json:"id"`
	WebsiteURL    string      `json:"websiteUrl"`
	Email         string      `json:"email"`
	Name          string      `json:"name"`
	CompanyDomain string      `json:"companyDomain,omitempty"`
	Status        AuditStatus `json:"status"`
	Results       *FactBundle `json:"results,omitempty"`
	Summary       *Summary    `json:"summary,omitempty"`
	Error         string      `json:"error,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	CompletedAt   *time.Time  `json:"completedAt,omitempty"`
}

// AuditUpdate is the set of fields the pipeline writes in one atomic transition.
type AuditUpdate struct {
	Status      AuditStatus
	Results     *FactBundle
	Summary     *Summary
	Error       string
	CompletedAt *time.Time
}

// Validate checks the results/summary iff completed and error iff failed rules.
func (u AuditUpdate) Validate() error {
	switch u.Status {
	case StatusCompleted:
		if u.Results == nil || u.Summary == nil {
			return errors.New(`completed audit requires results and summary`)
		}
		if u.Error != "" {
			return errors.New(`completed audit must not carry an error`)
		}
	case StatusFailed:
		if u.Error == "" {
			return errors.New(`failed audit requires an error message`)
		}
		if u.Results != nil || u.Summary != nil {
			return errors.New(`failed audit must not carry results or summary`)
		}
	case StatusPending, StatusProcessing:
		if u.Results != nil || u.Summary != nil || u.Error != "" {
			return errors.New(`non-terminal audit must not carry results, summary or error`)
		}
	default:
		return errors.Errorf(`unknown audit status %q`, u.Status)
	}
	return nil
}

// Apply writes the update onto the audit. Callers validate the transition first.
func (a *Audit) Apply(u AuditUpdate) {
	a.Status = u.Status
	a.Results = u.Results
	a.Summary = u.Summary
	a.Error = u.Error
	a.CompletedAt = u.CompletedAt
}

// Clone returns a copy that shares no mutable state with a.
func (a *Audit) Clone() *Audit {
	c := *a
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// StatusView is what a polling client sees. Results and Summary are only set
// when completed, Error only when failed.
type StatusView struct {
	ID          string      `json:"id"`
	Status      AuditStatus `json:"status"`
	Results     *FactBundle `json:"results,omitempty"`
	Summary     *Summary    `json:"summary,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}

func (a *Audit) View() *StatusView {
	v := &StatusView{
		ID:          a.ID,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
	}
	switch a.Status {
	case StatusCompleted:
		v.Results = a.Results
		v.Summary = a.Summary
	case StatusFailed:
		v.Error = a.Error
	}
	return v
}
