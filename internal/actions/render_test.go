package actions

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"qacraft/internal/domain"
)

func sampleActions() []domain.RecordedAction {
	return []domain.RecordedAction{
		{Kind: domain.ActionNavigate, URL: "https://x.test/login"},
		{Kind: domain.ActionClick, Selector: domain.Selector{Kind: domain.SelectorTestID, Value: "submit-btn"}},
		{Kind: domain.ActionFill, Selector: domain.Selector{Kind: domain.SelectorCSS, Value: "#email"}, Value: "a@b.com"},
		{Kind: domain.ActionClick, Selector: domain.Selector{Kind: domain.SelectorTestID, Value: "submit-btn"}},
	}
}

func TestLocatorsDedupFirstSeenOrder(t *testing.T) {
	want := []domain.Selector{
		{Kind: domain.SelectorTestID, Value: "submit-btn"},
		{Kind: domain.SelectorCSS, Value: "#email"},
	}
	got := Locators(sampleActions())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("locators mismatch (-want +got):\n%s", diff)
	}
}

func TestLocatorsDedupIsIdempotent(t *testing.T) {
	first := Locators(sampleActions())

	// Re-running dedup over its own output must not accumulate duplicates.
	var again []domain.RecordedAction
	for _, sel := range first {
		again = append(again, domain.RecordedAction{Kind: domain.ActionClick, Selector: sel})
	}
	second := Locators(again)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("dedup not idempotent (-first +second):\n%s", diff)
	}
}

func TestLocatorsDistinguishesKindsWithSameValue(t *testing.T) {
	recorded := []domain.RecordedAction{
		{Kind: domain.ActionClick, Selector: domain.Selector{Kind: domain.SelectorText, Value: "Save"}},
		{Kind: domain.ActionClick, Selector: domain.Selector{Kind: domain.SelectorTestID, Value: "Save"}},
	}
	if got := Locators(recorded); len(got) != 2 {
		t.Fatalf("expected 2 locators for distinct kinds, got %v", got)
	}
}

func TestRenderProducesBothSyntaxes(t *testing.T) {
	code := Render(sampleActions())

	for _, wantPy := range []string{
		`def test_recorded_flow(page: Page):`,
		`    page.goto("https://x.test/login")`,
		`    page.get_by_test_id("submit-btn").click()`,
		`    page.locator("#email").fill("a@b.com")`,
	} {
		if !strings.Contains(code.Python, wantPy) {
			t.Fatalf("python skeleton missing %q:\n%s", wantPy, code.Python)
		}
	}

	for _, wantJS := range []string{
		`test('recorded flow', async ({ page }) => {`,
		`  await page.goto('https://x.test/login');`,
		`  await page.getByTestId('submit-btn').click();`,
		`  await page.locator('#email').fill('a@b.com');`,
	} {
		if !strings.Contains(code.JavaScript, wantJS) {
			t.Fatalf("javascript skeleton missing %q:\n%s", wantJS, code.JavaScript)
		}
	}

	// One declaration per unique selector, in both declaration styles.
	if strings.Count(code.LocatorsPython, "submit_btn") != 1 {
		t.Fatalf("duplicate python locator declarations:\n%s", code.LocatorsPython)
	}
	if !strings.Contains(code.LocatorsPython, `    submit_btn = page.get_by_test_id("submit-btn")`) {
		t.Fatalf("unexpected python locators:\n%s", code.LocatorsPython)
	}
	if !strings.Contains(code.LocatorsJavaScript, `  submit_btn: "data-testid=submit-btn",`) {
		t.Fatalf("unexpected javascript locators:\n%s", code.LocatorsJavaScript)
	}
}

func TestRenderEmptyLocators(t *testing.T) {
	code := Render([]domain.RecordedAction{{Kind: domain.ActionNavigate, URL: "https://x.test"}})
	if !strings.Contains(code.LocatorsPython, "pass") {
		t.Fatalf("expected placeholder locator class:\n%s", code.LocatorsPython)
	}
}
