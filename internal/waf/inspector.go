package waf

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

// DefaultMaxRequestSize is the declared-body-size ceiling (10 MiB).
const DefaultMaxRequestSize = 10 * 1024 * 1024

// maxURLLength is the longest URL accepted before the request is
// considered malformed.
const maxURLLength = 2048

// watchedHeaders are inspected for script payloads. Proxies routinely
// rewrite these, which makes them a favorite smuggling spot.
var watchedHeaders = []string{
	"x-forwarded-for",
	"x-real-ip",
	"x-originating-ip",
	"x-remote-ip",
	"x-remote-addr",
	"x-client-ip",
	"x-cluster-client-ip",
	"x-forwarded",
	"forwarded-for",
	"forwarded",
}

var hostileHeaderTokens = []string{"<script", "javascript:", "onload="}

// blockedExtensions are executable or server-side script suffixes that are
// rejected anywhere in the URL, not only at path end.
var blockedExtensions = []string{
	".php", ".asp", ".aspx", ".jsp", ".py", ".pl", ".sh", ".bat", ".cmd",
	".exe", ".dll", ".so", ".dylib", ".jar", ".war", ".ear", ".class",
}

var scannerAgents = []string{"sqlmap", "nikto", "nmap", "masscan", "zap", "burp"}

// NormalizedRequest is the immutable view of an inbound request the
// inspector operates on. It is derived once per request and owned by a
// single inspection call.
type NormalizedRequest struct {
	URL           string
	Method        string
	Headers       map[string]string
	ClientIP      string
	ContentLength int64
	UserAgent     string
}

// Normalize derives a NormalizedRequest from a transport request. Header
// keys are lowercased with last-wins duplicate handling; an unparseable
// Content-Length is treated as zero rather than an error.
func Normalize(r *http.Request) NormalizedRequest {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		headers[strings.ToLower(name)] = values[len(values)-1]
	}

	var length int64
	if cl := headers["content-length"]; cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > 0 {
			length = n
		}
	} else if r.ContentLength > 0 {
		length = r.ContentLength
	}

	url := r.URL.String()
	if r.Host != "" && r.URL.Host == "" {
		url = r.Host + url
	}

	clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		clientIP = r.RemoteAddr
	}

	return NormalizedRequest{
		URL:           url,
		Method:        r.Method,
		Headers:       headers,
		ClientIP:      clientIP,
		ContentLength: length,
		UserAgent:     r.UserAgent(),
	}
}

// Inspector runs the ordered content checks against a normalized request.
// It is stateless aside from the catalog it holds and may be shared across
// any number of concurrent inspections.
type Inspector struct {
	catalog        *Catalog
	maxRequestSize int64
}

// NewInspector creates an inspector over the given catalog. A non-positive
// maxRequestSize falls back to DefaultMaxRequestSize.
func NewInspector(catalog *Catalog, maxRequestSize int64) *Inspector {
	if maxRequestSize <= 0 {
		maxRequestSize = DefaultMaxRequestSize
	}
	return &Inspector{catalog: catalog, maxRequestSize: maxRequestSize}
}

// Inspect runs the checks in fixed order, short-circuiting on the first
// block. Cheap checks run first to keep the average-case latency low.
func (i *Inspector) Inspect(req NormalizedRequest) Verdict {
	if req.ContentLength > i.maxRequestSize {
		return Block(ReasonMalformed, SizeEvidence{Size: req.ContentLength, Limit: i.maxRequestSize})
	}

	urlLower := strings.ToLower(req.URL)

	for _, check := range []struct {
		cat    Category
		reason Reason
	}{
		{CategorySQLInjection, ReasonSQLInjection},
		{CategoryXSS, ReasonXSS},
		{CategoryCommandInjection, ReasonCommandInjection},
		{CategoryPathTraversal, ReasonPathTraversal},
	} {
		if sig, matched, ok := i.catalog.Match(check.cat, urlLower); ok {
			return Block(check.reason, SignatureEvidence{Pattern: sig.Pattern.String(), Matched: matched})
		}
	}

	if v, blocked := i.checkHeaders(req); blocked {
		return v
	}

	for _, ext := range blockedExtensions {
		if strings.Contains(urlLower, ext) {
			return Block(ReasonBlockedExtension, ExtensionEvidence{Extension: ext, URL: req.URL})
		}
	}

	return i.checkMalformed(req)
}

func (i *Inspector) checkHeaders(req NormalizedRequest) (Verdict, bool) {
	for _, name := range watchedHeaders {
		value, ok := req.Headers[name]
		if !ok {
			continue
		}
		valueLower := strings.ToLower(value)
		for _, token := range hostileHeaderTokens {
			if strings.Contains(valueLower, token) {
				return Block(ReasonSuspiciousHeader, HeaderEvidence{Header: name, Value: valueLower}), true
			}
		}
	}
	return Verdict{}, false
}

func (i *Inspector) checkMalformed(req NormalizedRequest) Verdict {
	if strings.ContainsRune(req.URL, 0) {
		return Block(ReasonMalformed, MalformedEvidence{Issue: "null_byte_in_url"})
	}
	if len(req.URL) > maxURLLength {
		return Block(ReasonMalformed, MalformedEvidence{Issue: "url_too_long", Length: len(req.URL)})
	}

	agent := strings.ToLower(req.UserAgent)
	for _, scanner := range scannerAgents {
		if strings.Contains(agent, scanner) {
			return Block(ReasonSuspiciousAgent, AgentEvidence{UserAgent: agent})
		}
	}

	return Allow()
}
