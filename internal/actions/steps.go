package actions

import (
	"fmt"
	"strings"

	"qacraft/internal/domain"
)

// Steps converts an action list into numbered human-readable test steps,
// one line per action with fixed phrasing per action kind.
func Steps(recorded []domain.RecordedAction) []string {
	steps := make([]string, 0, len(recorded))
	for _, action := range recorded {
		var text string
		switch action.Kind {
		case domain.ActionNavigate:
			text = fmt.Sprintf("Navigate to %s", action.URL)
		case domain.ActionClick:
			text = fmt.Sprintf("Click on %s", ReadableSelector(action.Selector))
		case domain.ActionFill:
			text = fmt.Sprintf("Enter '%s' in %s", action.Value, ReadableSelector(action.Selector))
		default:
			continue
		}
		steps = append(steps, fmt.Sprintf("%d. %s", len(steps)+1, text))
	}
	return steps
}

// ReadableSelector renders a selector the way a manual tester would name
// the element.
func ReadableSelector(sel domain.Selector) string {
	switch sel.Kind {
	case domain.SelectorTestID:
		return sel.Value
	case domain.SelectorRole:
		if sel.Name != "" {
			return fmt.Sprintf("%s '%s'", sel.Value, sel.Name)
		}
		return sel.Value
	case domain.SelectorText:
		return fmt.Sprintf("'%s'", sel.Value)
	case domain.SelectorID:
		return fmt.Sprintf("element with id '%s'", sel.Value)
	case domain.SelectorName:
		return fmt.Sprintf("field '%s'", sel.Value)
	case domain.SelectorCSS:
		// CSS queries often carry an id or name shape worth unwrapping.
		if strings.HasPrefix(sel.Value, "#") {
			return fmt.Sprintf("element with id '%s'", sel.Value[1:])
		}
		if name, ok := nameAttrValue(sel.Value); ok {
			return fmt.Sprintf("field '%s'", name)
		}
		return sel.Value
	}
	if sel.Value == "" {
		return "element"
	}
	return sel.Value
}

// nameAttrValue unwraps [name="x"] / [name='x'] css queries.
func nameAttrValue(css string) (string, bool) {
	if !strings.HasPrefix(css, "[name=") || !strings.HasSuffix(css, "]") {
		return "", false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(css, "[name="), "]")
	inner = strings.Trim(inner, `"'`)
	if inner == "" {
		return "", false
	}
	return inner, true
}
