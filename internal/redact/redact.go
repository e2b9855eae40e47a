// Package redact strips credentials, tokens, SQL and file paths from error
// text before it is logged.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order; earlier rules see the unmodified text.
var rules = []rule{
	{
		// goroutine dumps run to the end of the message
		regexp.MustCompile(`(?:panic: |goroutine \d+ \[)[\s\S]*`),
		RedactedStackPlaceholder,
	},
	{
		// userinfo in postgres:// and redis:// URLs
		regexp.MustCompile(`(?i)\b(?:postgres(?:ql)?|rediss?)://[^@\s/]+@`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		RedactedJWTPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-.~+/]+=*`),
		"Bearer " + RedactedTokenPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)=\S+`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(?:jwt_secret|secret|api[_-]?key)=\S+`),
		RedactedKeyPlaceholder,
	},
	{
		// statement text runs to the end of the message
		regexp.MustCompile(`\b(?:SELECT|INSERT|UPDATE|DELETE|WITH)\s[\s\S]*`),
		RedactedSQLPlaceholder,
	},
	{
		regexp.MustCompile(`(?:/[\w.-]+){2,}`),
		RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
