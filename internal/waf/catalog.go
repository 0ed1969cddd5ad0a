package waf

import (
	"regexp"
)

// Category identifies an attack class a signature belongs to.
type Category string

const (
	CategorySQLInjection     Category = "sql_injection"
	CategoryXSS              Category = "xss"
	CategoryCommandInjection Category = "command_injection"
	CategoryPathTraversal    Category = "path_traversal"
)

// Severity grades how dangerous a matched signature is considered.
type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Signature is a single detection rule: a case-insensitive regular
// expression tagged with its attack category. Signatures are built once at
// catalog construction and never mutated.
type Signature struct {
	Category Category
	Pattern  *regexp.Regexp
	Severity Severity
}

// Catalog is an immutable, categorized set of signatures. It is safe for
// concurrent use without locking because it is read-only after construction.
type Catalog struct {
	byCategory map[Category][]Signature
}

// NewCatalog groups the given signatures by category, preserving order
// within each category.
func NewCatalog(sigs []Signature) *Catalog {
	byCat := make(map[Category][]Signature)
	for _, s := range sigs {
		byCat[s.Category] = append(byCat[s.Category], s)
	}
	return &Catalog{byCategory: byCat}
}

// Match returns the first signature of the category whose pattern matches
// text, together with the matched substring. A single match is sufficient to
// block, so only the first is reported.
func (c *Catalog) Match(cat Category, text string) (Signature, string, bool) {
	for _, sig := range c.byCategory[cat] {
		if loc := sig.Pattern.FindString(text); loc != "" {
			return sig, loc, true
		}
	}
	return Signature{}, "", false
}

// Signatures returns all signatures of a category in catalog order.
func (c *Catalog) Signatures(cat Category) []Signature {
	return c.byCategory[cat]
}

// Categories lists the attack classes the catalog covers.
func (c *Catalog) Categories() []Category {
	return []Category{
		CategorySQLInjection,
		CategoryXSS,
		CategoryCommandInjection,
		CategoryPathTraversal,
	}
}

func mustSig(cat Category, sev Severity, expr string) Signature {
	return Signature{
		Category: cat,
		Pattern:  regexp.MustCompile(`(?i)` + expr),
		Severity: sev,
	}
}

// DefaultCatalog builds the built-in signature set. Matching is intentionally
// substring/regex based against the full URL; false positives on legitimate
// URLs containing blocked words are an accepted trade-off.
func DefaultCatalog() *Catalog {
	sigs := []Signature{
		// SQL injection
		mustSig(CategorySQLInjection, SeverityHigh, `\b(select|insert|update|delete|drop|create|alter|exec|union|script)\b`),
		mustSig(CategorySQLInjection, SeverityHigh, `\b(or|and)\s+\d+\s*=\s*\d+`),
		mustSig(CategorySQLInjection, SeverityHigh, `\b(or|and)\s+['"]?\w+['"]?\s*=\s*['"]?\w+['"]?`),
		mustSig(CategorySQLInjection, SeverityCritical, `\bunion\s+select\b`),
		mustSig(CategorySQLInjection, SeverityCritical, `\bdrop\s+table\b`),
		mustSig(CategorySQLInjection, SeverityCritical, `\bdelete\s+from\b`),
		mustSig(CategorySQLInjection, SeverityHigh, `\binsert\s+into\b`),
		mustSig(CategorySQLInjection, SeverityHigh, `\bupdate\s+set\b`),
		mustSig(CategorySQLInjection, SeverityCritical, `\bexec\s*\(`),
		mustSig(CategorySQLInjection, SeverityMedium, `\bscript\b`),
		mustSig(CategorySQLInjection, SeverityMedium, `\beval\b`),
		mustSig(CategorySQLInjection, SeverityMedium, `\bexpr\b`),

		// Cross-site scripting
		mustSig(CategoryXSS, SeverityHigh, `<script[^>]*>.*?</script>`),
		mustSig(CategoryXSS, SeverityHigh, `javascript:`),
		mustSig(CategoryXSS, SeverityHigh, `on\w+\s*=`),
		mustSig(CategoryXSS, SeverityHigh, `<iframe[^>]*>`),
		mustSig(CategoryXSS, SeverityHigh, `<object[^>]*>`),
		mustSig(CategoryXSS, SeverityHigh, `<embed[^>]*>`),
		mustSig(CategoryXSS, SeverityMedium, `<link[^>]*>`),
		mustSig(CategoryXSS, SeverityMedium, `<meta[^>]*>`),
		mustSig(CategoryXSS, SeverityMedium, `<style[^>]*>.*?</style>`),
		mustSig(CategoryXSS, SeverityMedium, `expression\s*\(`),
		mustSig(CategoryXSS, SeverityMedium, `url\s*\(`),
		mustSig(CategoryXSS, SeverityMedium, `@import`),
		mustSig(CategoryXSS, SeverityHigh, `vbscript:`),
		mustSig(CategoryXSS, SeverityHigh, `data:text/html`),
		mustSig(CategoryXSS, SeverityHigh, `data:application/javascript`),

		// Command injection
		mustSig(CategoryCommandInjection, SeverityCritical, `(\||;|\$\(|`+"`"+`|\$\{)`),
		mustSig(CategoryCommandInjection, SeverityHigh, `\b(cat|ls|pwd|whoami|id|uname|ps|netstat|ifconfig)\b`),
		mustSig(CategoryCommandInjection, SeverityCritical, `\b(rm|mv|cp|chmod|chown|kill|killall)\b`),
		mustSig(CategoryCommandInjection, SeverityCritical, `\b(wget|curl|nc|netcat|telnet|ssh|ftp)\b`),
		mustSig(CategoryCommandInjection, SeverityCritical, `\b(bash|sh|cmd|powershell|python|perl|ruby)\b`),
		mustSig(CategoryCommandInjection, SeverityMedium, `\b(echo|print|printf|sprintf)\b`),
		mustSig(CategoryCommandInjection, SeverityCritical, `\b(exec|system|shell_exec|passthru|eval)\b`),
		mustSig(CategoryCommandInjection, SeverityMedium, `\b(import|require|include|load)\b`),

		// Path traversal, including encoded and overlong UTF-8 variants
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\./`),
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\.\\`),
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\.%2f`),
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\.%5c`),
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\.%252f`),
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\.%255c`),
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\.%c0%af`),
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\.%c1%9c`),
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\.%c0%2f`),
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\.%252e%252e%252f`),
		mustSig(CategoryPathTraversal, SeverityHigh, `\.\.%252e%252e%255c`),
	}

	return NewCatalog(sigs)
}
