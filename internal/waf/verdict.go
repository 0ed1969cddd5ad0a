package waf

// Reason is the machine-readable explanation attached to a verdict.
type Reason string

const (
	ReasonAllowed          Reason = "allowed"
	ReasonRateLimited      Reason = "rate_limited"
	ReasonSQLInjection     Reason = "sql_injection"
	ReasonXSS              Reason = "xss"
	ReasonCommandInjection Reason = "command_injection"
	ReasonPathTraversal    Reason = "path_traversal"
	ReasonSuspiciousHeader Reason = "suspicious_header"
	ReasonBlockedExtension Reason = "blocked_extension"
	ReasonMalformed        Reason = "malformed"
	ReasonSuspiciousAgent  Reason = "suspicious_user_agent"
)

// Label returns the human-readable form used in block responses and logs.
func (r Reason) Label() string {
	switch r {
	case ReasonAllowed:
		return "allowed"
	case ReasonRateLimited:
		return "Rate limit exceeded"
	case ReasonSQLInjection:
		return "SQL Injection"
	case ReasonXSS:
		return "XSS Attack"
	case ReasonCommandInjection:
		return "Command Injection"
	case ReasonPathTraversal:
		return "Path Traversal"
	case ReasonSuspiciousHeader:
		return "Suspicious Header"
	case ReasonBlockedExtension:
		return "Blocked File Extension"
	case ReasonMalformed:
		return "Malformed Request"
	case ReasonSuspiciousAgent:
		return "Suspicious User Agent"
	}
	return string(r)
}

// Evidence is the closed set of per-reason detail records. Each variant
// flattens to a string map for audit serialization; a blocked verdict must
// carry enough evidence to explain the block without re-running the match.
type Evidence interface {
	Fields() map[string]any
}

// SizeEvidence records an oversized request body declaration.
type SizeEvidence struct {
	Size  int64
	Limit int64
}

func (e SizeEvidence) Fields() map[string]any {
	return map[string]any{"size": e.Size, "limit": e.Limit}
}

// SignatureEvidence records a catalog signature match.
type SignatureEvidence struct {
	Pattern string
	Matched string
}

func (e SignatureEvidence) Fields() map[string]any {
	return map[string]any{"pattern": e.Pattern, "matched_text": e.Matched}
}

// HeaderEvidence records a watched header carrying a hostile value.
type HeaderEvidence struct {
	Header string
	Value  string
}

func (e HeaderEvidence) Fields() map[string]any {
	return map[string]any{"header": e.Header, "value": e.Value}
}

// ExtensionEvidence records a blocked file extension found in the URL.
type ExtensionEvidence struct {
	Extension string
	URL       string
}

func (e ExtensionEvidence) Fields() map[string]any {
	return map[string]any{"extension": e.Extension, "url": e.URL}
}

// MalformedEvidence records a structurally invalid request.
type MalformedEvidence struct {
	Issue  string
	Length int
}

func (e MalformedEvidence) Fields() map[string]any {
	f := map[string]any{"issue": e.Issue}
	if e.Length > 0 {
		f["length"] = e.Length
	}
	return f
}

// AgentEvidence records a known scanner user agent.
type AgentEvidence struct {
	UserAgent string
}

func (e AgentEvidence) Fields() map[string]any {
	return map[string]any{"user_agent": e.UserAgent}
}

// Verdict is the allow/block decision for a single request. Exactly one
// verdict is produced per inspected request.
type Verdict struct {
	Allowed bool
	Reason  Reason
	Details Evidence
}

// Allow returns the passing verdict.
func Allow() Verdict {
	return Verdict{Allowed: true, Reason: ReasonAllowed}
}

// Block returns a blocking verdict with its evidence.
func Block(reason Reason, ev Evidence) Verdict {
	return Verdict{Allowed: false, Reason: reason, Details: ev}
}

// DetailFields returns the flattened evidence map, or an empty map for
// allowed verdicts.
func (v Verdict) DetailFields() map[string]any {
	if v.Details == nil {
		return map[string]any{}
	}
	return v.Details.Fields()
}
