// Package actions reconstructs structured browser actions from freeform
// automation-tool source text.
//
// Extraction is a best-effort line classifier: each line is matched against
// an ordered rule table and yields at most one action. Selector
// classification follows a fixed priority (test-id > role > text > generic
// locator), so new selector kinds are additive rules, not new branches.
// Lines matching nothing are ignored, never errored.
package actions

import (
	"strings"
	"time"

	"qacraft/internal/domain"
)

// selectorRule maps an accessor token to a selector kind. Order is the
// extraction priority; the first token present on the line wins.
type selectorRule struct {
	token string
	kind  domain.SelectorKind
}

// Both the Python and JavaScript accessor spellings are recognized so pasted
// transcripts from either codegen target extract identically.
var selectorRules = []selectorRule{
	{"get_by_test_id(", domain.SelectorTestID},
	{"getByTestId(", domain.SelectorTestID},
	{"get_by_role(", domain.SelectorRole},
	{"getByRole(", domain.SelectorRole},
	{"get_by_text(", domain.SelectorText},
	{"getByText(", domain.SelectorText},
	{"locator(", domain.SelectorCSS},
}

const (
	gotoToken  = "goto("
	clickToken = ".click()"
	fillToken  = ".fill("
)

// Extract scans source text line by line and reconstructs the ordered
// action list. If the whole text yields nothing, a single navigation to
// startURL is synthesized: extraction never returns empty for a session
// that at least navigated once.
func Extract(source, startURL string) []domain.RecordedAction {
	now := time.Now()
	var recorded []domain.RecordedAction

	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		switch {
		case strings.Contains(line, gotoToken):
			if url, ok := quotedAfter(line, gotoToken); ok {
				recorded = append(recorded, domain.RecordedAction{
					Kind: domain.ActionNavigate, URL: url, Timestamp: now,
				})
			}

		case strings.Contains(line, clickToken):
			if sel, ok := classifySelector(line); ok {
				recorded = append(recorded, domain.RecordedAction{
					Kind: domain.ActionClick, Selector: sel, Timestamp: now,
				})
			}

		case strings.Contains(line, fillToken):
			sel, ok := classifySelector(line)
			if !ok {
				continue
			}
			value, _ := quotedAfter(line, fillToken)
			recorded = append(recorded, domain.RecordedAction{
				Kind: domain.ActionFill, Selector: sel, Value: value, Timestamp: now,
			})
		}
	}

	if len(recorded) == 0 && startURL != "" {
		recorded = append(recorded, domain.RecordedAction{
			Kind: domain.ActionNavigate, URL: startURL, Timestamp: now,
		})
	}
	return recorded
}

// classifySelector resolves the line's selector using the rule table. The
// selector value is the first quoted literal passed to whichever accessor
// matched; role accessors additionally pick up an optional name argument.
func classifySelector(line string) (domain.Selector, bool) {
	for _, rule := range selectorRules {
		if !strings.Contains(line, rule.token) {
			continue
		}
		value, ok := quotedAfter(line, rule.token)
		if !ok {
			return domain.Selector{}, false
		}
		sel := domain.Selector{Kind: rule.kind, Value: value}
		if rule.kind == domain.SelectorRole {
			sel.Name = roleName(line)
		}
		return sel, true
	}
	return domain.Selector{}, false
}

// quotedAfter returns the first quoted literal following token, supporting
// both single and double quote styles.
func quotedAfter(line, token string) (string, bool) {
	at := strings.Index(line, token)
	if at == -1 {
		return "", false
	}
	rest := line[at+len(token):]
	for i := 0; i < len(rest); i++ {
		quote := rest[i]
		if quote != '"' && quote != '\'' {
			continue
		}
		end := strings.IndexByte(rest[i+1:], quote)
		if end == -1 {
			return "", false
		}
		return rest[i+1 : i+1+end], true
	}
	return "", false
}

// roleName extracts the accessible-name argument of a role accessor, in
// either Python (name="...") or JavaScript ({ name: '...' }) spelling.
func roleName(line string) string {
	for _, marker := range []string{"name=", "name:"} {
		at := strings.Index(line, marker)
		if at == -1 {
			continue
		}
		if name, ok := quotedAfter(line[at:], marker); ok {
			return name
		}
	}
	return ""
}
