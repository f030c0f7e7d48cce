package service

import (
	"context"
	"net/http"
	"net/url"
	"time"
	"website_auditor/internal/domain/adaptors"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/pkg/errors"
	"website_auditor/internal/pkg/metrics"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLinkConcurrency = 10
	DefaultLinkTimeout     = 5 * time.Second
)

type LinkChecker struct {
	prober      adaptors.LinkProber
	concurrency int
	timeout     time.Duration
	log         *log.Logger
}

func NewLinkChecker(prober adaptors.LinkProber, concurrency int, timeout time.Duration, log *log.Logger) *LinkChecker {
	if concurrency <= 0 {
		concurrency = DefaultLinkConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultLinkTimeout
	}
	return &LinkChecker{
		prober:      prober,
		concurrency: concurrency,
		timeout:     timeout,
		log:         log,
	}
}

type probeOutcome struct {
	status     models.LinkStatus
	statusCode int
	reason     string
}

// Check returns a copy of links, in the same order, with Status filled in.
// Each distinct http(s) URL is probed once; other schemes are skipped. A
// cancelled ctx stops scheduling probes and is returned as the error.
func (c *LinkChecker) Check(ctx context.Context, links []models.LinkRecord) ([]models.LinkRecord, error) {
	checked := make([]models.LinkRecord, len(links))
	copy(checked, links)

	var targets []string
	index := map[string]int{}
	for i := range checked {
		if !probeable(checked[i].Href) {
			checked[i].Status = models.LinkSkipped
			checked[i].Reason = `unsupported scheme`
			metrics.AuditLinkProbesTotal.WithLabelValues(string(models.LinkSkipped)).Inc()
			continue
		}
		if _, ok := index[checked[i].Href]; !ok {
			index[checked[i].Href] = len(targets)
			targets = append(targets, checked[i].Href)
		}
	}

	outcomes := make([]*probeOutcome, len(targets))
	g := errgroup.Group{}
	g.SetLimit(c.concurrency)
	for i, target := range targets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = c.probe(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	for i := range checked {
		idx, ok := index[checked[i].Href]
		if !ok || checked[i].Status == models.LinkSkipped || outcomes[idx] == nil {
			continue
		}
		checked[i].Status = outcomes[idx].status
		checked[i].StatusCode = outcomes[idx].statusCode
		checked[i].Reason = outcomes[idx].reason
	}

	c.log.WithContext(ctx).WithFields(log.Fields{`links`: len(links), `probed`: len(targets)}).Debug(`link check finished`)
	return checked, ctx.Err()
}

func (c *LinkChecker) probe(ctx context.Context, target string) *probeOutcome {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out probeOutcome
	res, err := c.prober.Probe(probeCtx, target)
	switch {
	case err != nil:
		out = probeOutcome{status: models.LinkError, reason: errors.Message(err)}
	case res.StatusCode >= http.StatusBadRequest:
		out = probeOutcome{status: models.LinkBroken, statusCode: res.StatusCode, reason: http.StatusText(res.StatusCode)}
	default:
		out = probeOutcome{status: models.LinkReachable, statusCode: res.StatusCode}
	}

	metrics.AuditLinkProbesTotal.WithLabelValues(string(out.status)).Inc()
	return &out
}

// BrokenLinks filters the records that failed their probe.
func BrokenLinks(links []models.LinkRecord) []models.LinkRecord {
	broken := []models.LinkRecord{}
	for _, l := range links {
		if l.IsBroken() {
			broken = append(broken, l)
		}
	}
	return broken
}

func probeable(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
