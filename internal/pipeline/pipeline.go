package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/gatewarden/gatewarden/internal/clock"
	"github.com/gatewarden/gatewarden/internal/metrics"
	"github.com/gatewarden/gatewarden/internal/ratelimit"
	"github.com/gatewarden/gatewarden/internal/waf"
)

// AuditEvent is the structured record emitted once per decided request.
type AuditEvent struct {
	Timestamp time.Time
	ClientKey string
	Method    string
	Path      string
	Reason    waf.Reason
	Details   map[string]any
	UserAgent string
	Referer   string
}

// AuditSink receives audit events. Delivery is fire-and-forget: a sink must
// never block the request path, and its failures stay out of the verdict.
type AuditSink interface {
	Record(event AuditEvent)
}

// Pipeline composes the rate limiter and the content inspector into a
// single per-request decision. The limiter runs first: it is cheap and
// shields the regex checks from abusive clients.
type Pipeline struct {
	limiter        *ratelimit.Limiter
	inspector      *waf.Inspector
	audit          AuditSink
	exemptPrefixes []string
	clock          clock.Clock
}

// New wires a pipeline. exemptPrefixes are path prefixes (the admin
// surface, health, metrics) that skip inspection entirely; audit may be nil.
func New(limiter *ratelimit.Limiter, inspector *waf.Inspector, audit AuditSink, exemptPrefixes []string, clk clock.Clock) *Pipeline {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Pipeline{
		limiter:        limiter,
		inspector:      inspector,
		audit:          audit,
		exemptPrefixes: exemptPrefixes,
		clock:          clk,
	}
}

// Exempt reports whether a request path bypasses inspection.
func (p *Pipeline) Exempt(path string) bool {
	for _, prefix := range p.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ClientKey resolves the identifier rate-limit state is partitioned by.
// The first X-Forwarded-For element wins over the transport peer address.
// That header is spoofable; the precedence is kept deliberately because the
// proxy normally sits behind an edge that sets it.
func (p *Pipeline) ClientKey(req waf.NormalizedRequest) string {
	if fwd := req.Headers["x-forwarded-for"]; fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return req.ClientIP
}

// Decide produces the verdict for one request and emits its audit event.
// The rate check runs before content inspection; a denied client never
// reaches the regex engine.
func (p *Pipeline) Decide(ctx context.Context, req waf.NormalizedRequest, path string) waf.Verdict {
	metrics.IncRequest()

	key := p.ClientKey(req)

	var verdict waf.Verdict
	if !p.limiter.Allow(ctx, key) {
		verdict = waf.Block(waf.ReasonRateLimited, nil)
		metrics.IncRateLimited()
	} else {
		verdict = p.inspector.Inspect(req)
		if !verdict.Allowed {
			metrics.IncBlocked(string(verdict.Reason))
		}
	}

	p.emit(key, req, path, verdict)
	return verdict
}

func (p *Pipeline) emit(key string, req waf.NormalizedRequest, path string, verdict waf.Verdict) {
	if p.audit == nil {
		return
	}
	p.audit.Record(AuditEvent{
		Timestamp: p.clock.Now(),
		ClientKey: key,
		Method:    req.Method,
		Path:      path,
		Reason:    verdict.Reason,
		Details:   verdict.DetailFields(),
		UserAgent: req.UserAgent,
		Referer:   req.Headers["referer"],
	})
}
