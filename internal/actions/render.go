package actions

import (
	"fmt"
	"strings"

	"qacraft/internal/domain"
)

// Locators returns the unique selectors referenced by the action list, one
// per (kind, value) pair in first-seen order. Running it on its own output
// is a no-op: deduplication never accumulates.
func Locators(recorded []domain.RecordedAction) []domain.Selector {
	seen := make(map[string]bool)
	var unique []domain.Selector
	for _, action := range recorded {
		sel := action.Selector
		if sel.Value == "" {
			continue
		}
		key := string(sel.Kind) + "\x00" + sel.Value
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, sel)
	}
	return unique
}

// Render produces the two code skeletons for an action list: a Python test
// with an assignment-style locator class, and a JavaScript test with an
// object-style locator map. Both are rendered from the same actions; the
// selector classification is syntax independent. The output is a text
// product only and is never executed.
func Render(recorded []domain.RecordedAction) domain.GeneratedCode {
	return domain.GeneratedCode{
		Python:             renderPython(recorded),
		JavaScript:         renderJavaScript(recorded),
		LocatorsPython:     renderPythonLocators(Locators(recorded)),
		LocatorsJavaScript: renderJavaScriptLocators(Locators(recorded)),
	}
}

func renderPython(recorded []domain.RecordedAction) string {
	lines := []string{
		"from playwright.sync_api import Page, expect",
		"",
		"",
		"def test_recorded_flow(page: Page):",
	}
	for _, action := range recorded {
		switch action.Kind {
		case domain.ActionNavigate:
			lines = append(lines, fmt.Sprintf("    page.goto(%q)", action.URL))
		case domain.ActionClick:
			lines = append(lines, fmt.Sprintf("    %s.click()", pyAccessor(action.Selector)))
		case domain.ActionFill:
			lines = append(lines, fmt.Sprintf("    %s.fill(%q)", pyAccessor(action.Selector), action.Value))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func renderJavaScript(recorded []domain.RecordedAction) string {
	lines := []string{
		"const { test, expect } = require('@playwright/test');",
		"",
		"",
		"test('recorded flow', async ({ page }) => {",
	}
	for _, action := range recorded {
		switch action.Kind {
		case domain.ActionNavigate:
			lines = append(lines, fmt.Sprintf("  await page.goto('%s');", action.URL))
		case domain.ActionClick:
			lines = append(lines, fmt.Sprintf("  await %s.click();", jsAccessor(action.Selector)))
		case domain.ActionFill:
			lines = append(lines, fmt.Sprintf("  await %s.fill('%s');", jsAccessor(action.Selector), action.Value))
		}
	}
	lines = append(lines, "});")
	return strings.Join(lines, "\n")
}

// renderPythonLocators emits one assignment per unique selector.
func renderPythonLocators(unique []domain.Selector) string {
	lines := []string{"class Locators:"}
	for _, sel := range unique {
		lines = append(lines, fmt.Sprintf("    %s = %s", identifier(sel.Value), pyAccessor(sel)))
	}
	if len(lines) == 1 {
		lines = append(lines, "    pass  # no locators recorded")
	}
	return strings.Join(lines, "\n")
}

// renderJavaScriptLocators emits one object entry per unique selector,
// using query-string form so the map stays framework agnostic.
func renderJavaScriptLocators(unique []domain.Selector) string {
	lines := []string{"const locators = {"}
	for _, sel := range unique {
		lines = append(lines, fmt.Sprintf("  %s: %q,", identifier(sel.Value), queryString(sel)))
	}
	lines = append(lines, "};")
	return strings.Join(lines, "\n")
}

func pyAccessor(sel domain.Selector) string {
	switch sel.Kind {
	case domain.SelectorTestID:
		return fmt.Sprintf("page.get_by_test_id(%q)", sel.Value)
	case domain.SelectorRole:
		if sel.Name != "" {
			return fmt.Sprintf("page.get_by_role(%q, name=%q)", sel.Value, sel.Name)
		}
		return fmt.Sprintf("page.get_by_role(%q)", sel.Value)
	case domain.SelectorText:
		return fmt.Sprintf("page.get_by_text(%q)", sel.Value)
	case domain.SelectorID:
		return fmt.Sprintf("page.locator(%q)", "#"+sel.Value)
	case domain.SelectorName:
		return fmt.Sprintf("page.locator(%q)", `[name="`+sel.Value+`"]`)
	default:
		return fmt.Sprintf("page.locator(%q)", sel.Value)
	}
}

func jsAccessor(sel domain.Selector) string {
	switch sel.Kind {
	case domain.SelectorTestID:
		return fmt.Sprintf("page.getByTestId('%s')", sel.Value)
	case domain.SelectorRole:
		if sel.Name != "" {
			return fmt.Sprintf("page.getByRole('%s', { name: '%s' })", sel.Value, sel.Name)
		}
		return fmt.Sprintf("page.getByRole('%s')", sel.Value)
	case domain.SelectorText:
		return fmt.Sprintf("page.getByText('%s')", sel.Value)
	case domain.SelectorID:
		return fmt.Sprintf("page.locator('#%s')", sel.Value)
	case domain.SelectorName:
		return fmt.Sprintf("page.locator('[name=\"%s\"]')", sel.Value)
	default:
		return fmt.Sprintf("page.locator('%s')", sel.Value)
	}
}

// queryString renders a selector as a Playwright-style query string.
func queryString(sel domain.Selector) string {
	switch sel.Kind {
	case domain.SelectorTestID:
		return "data-testid=" + sel.Value
	case domain.SelectorRole:
		if sel.Name != "" {
			return fmt.Sprintf(`role=%s[name="%s"]`, sel.Value, sel.Name)
		}
		return "role=" + sel.Value
	case domain.SelectorText:
		return "text=" + sel.Value
	case domain.SelectorID:
		return "#" + sel.Value
	case domain.SelectorName:
		return `[name="` + sel.Value + `"]`
	default:
		return sel.Value
	}
}

// identifier derives a declaration name from a selector value: lowercase,
// non-alphanumerics folded to underscores, capped at 30 characters.
func identifier(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "element"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "el_" + name
	}
	if len(name) > 30 {
		name = name[:30]
	}
	return name
}
