package parser

import "regexp"

// rewriteRule rewrites an informal relative phrase into a form the time
// grammar understands. Rules run in table order; adding a phrase means adding
// a row, not touching control flow.
type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var rewriteRules = []rewriteRule{
	{regexp.MustCompile(`(?i)\bafter\s+(\d+)\s*(?:min|minute|minutes)\b`), "in $1 minutes"},
	{regexp.MustCompile(`(?i)\bafter\s+(\d+)\s*(?:hour|hours)\b`), "in $1 hours"},
	{regexp.MustCompile(`(?i)\bafter\s+(\d+)\s*(?:day|days)\b`), "in $1 days"},
	{regexp.MustCompile(`(?i)\blater today\b`), "in 2 hours"},
	{regexp.MustCompile(`(?i)\bthis evening\b`), "today at 7pm"},
	{regexp.MustCompile(`(?i)\btonight\b`), "today at 8pm"},
}

// normalize applies every rewrite rule in order. The result is used for time
// extraction only; the stored task text is derived from the original
// instruction unless span removal there fails.
func normalize(instruction string) string {
	out := instruction
	for _, r := range rewriteRules {
		out = r.pattern.ReplaceAllString(out, r.replacement)
	}
	return out
}
