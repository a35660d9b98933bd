package messaging

import (
	"regexp"
	"sort"
	"strings"
)

// Placeholders lists every token a template body may use.
var Placeholders = []string{
	"business_name",
	"support_phone",
	"tracking_id",
	"sender_name",
	"receiver_name",
	"status",
	"price_total",
	"eta_text",
	"note",
}

var tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// Render substitutes {{name}} tokens from vars. Tokens without a value are
// left in place so a broken template is visible in the log.
func Render(body string, vars map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(body, func(tok string) string {
		name := tokenPattern.FindStringSubmatch(tok)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return tok
	})
}

// UnknownPlaceholders returns the tokens in body that are not in
// Placeholders, sorted and de-duplicated.
func UnknownPlaceholders(body string) []string {
	known := make(map[string]bool, len(Placeholders))
	for _, p := range Placeholders {
		known[p] = true
	}
	seen := map[string]bool{}
	var unknown []string
	for _, m := range tokenPattern.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if !known[name] && !seen[name] {
			seen[name] = true
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func humanStatus(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
