package actions

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"qacraft/internal/domain"
)

var ignoreTimestamps = cmpopts.IgnoreFields(domain.RecordedAction{}, "Timestamp")

func TestExtractCodegenTranscript(t *testing.T) {
	source := `
from playwright.sync_api import Page, expect

def test(page: Page):
    page.goto("https://x.test/login")
    page.get_by_test_id("submit-btn").click()
    page.locator("#email").fill("a@b.com")
`
	got := Extract(source, "https://x.test/login")

	want := []domain.RecordedAction{
		{Kind: domain.ActionNavigate, URL: "https://x.test/login"},
		{Kind: domain.ActionClick, Selector: domain.Selector{Kind: domain.SelectorTestID, Value: "submit-btn"}},
		{Kind: domain.ActionFill, Selector: domain.Selector{Kind: domain.SelectorCSS, Value: "#email"}, Value: "a@b.com"},
	}
	if diff := cmp.Diff(want, got, ignoreTimestamps); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}

	steps := Steps(got)
	wantSteps := []string{
		"1. Navigate to https://x.test/login",
		"2. Click on submit-btn",
		"3. Enter 'a@b.com' in element with id 'email'",
	}
	if diff := cmp.Diff(wantSteps, steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}

	if locators := Locators(got); len(locators) != 2 {
		t.Fatalf("expected one locator per selector, got %v", locators)
	}
}

func TestExtractSelectorPriority(t *testing.T) {
	// A line carrying both a test-id accessor and a generic locator must
	// classify as test-id: the rule table is ordered by priority.
	got := Extract(`page.locator("form").get_by_test_id("save").click()`, "")
	if len(got) != 1 {
		t.Fatalf("expected one action, got %d", len(got))
	}
	if got[0].Selector.Kind != domain.SelectorTestID || got[0].Selector.Value != "save" {
		t.Fatalf("selector = %+v, want testid save", got[0].Selector)
	}
}

func TestExtractRoleWithName(t *testing.T) {
	got := Extract(`page.get_by_role("button", name="Sign in").click()`, "")
	want := domain.Selector{Kind: domain.SelectorRole, Value: "button", Name: "Sign in"}
	if len(got) != 1 || got[0].Selector != want {
		t.Fatalf("got %+v, want selector %+v", got, want)
	}
}

func TestExtractJavaScriptSpelling(t *testing.T) {
	source := `
  await page.goto('https://x.test');
  await page.getByTestId('menu').click();
  await page.getByRole('textbox', { name: 'Email' }).fill('qa@x.test');
`
	got := Extract(source, "")
	want := []domain.RecordedAction{
		{Kind: domain.ActionNavigate, URL: "https://x.test"},
		{Kind: domain.ActionClick, Selector: domain.Selector{Kind: domain.SelectorTestID, Value: "menu"}},
		{Kind: domain.ActionFill, Selector: domain.Selector{Kind: domain.SelectorRole, Value: "textbox", Name: "Email"}, Value: "qa@x.test"},
	}
	if diff := cmp.Diff(want, got, ignoreTimestamps); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIgnoresUnrecognizedLines(t *testing.T) {
	source := `
import os
# a comment
page.wait_for_timeout(500)
expect(page).to_have_title("Dashboard")
page.goto("https://x.test/home")
`
	got := Extract(source, "https://x.test/home")
	if len(got) != 1 || got[0].Kind != domain.ActionNavigate {
		t.Fatalf("expected only the navigation, got %+v", got)
	}
}

func TestExtractSynthesizesNavigateFloor(t *testing.T) {
	got := Extract("nothing recognizable at all", "https://x.test/start")
	want := []domain.RecordedAction{{Kind: domain.ActionNavigate, URL: "https://x.test/start"}}
	if diff := cmp.Diff(want, got, ignoreTimestamps); diff != "" {
		t.Fatalf("floor mismatch (-want +got):\n%s", diff)
	}
}
