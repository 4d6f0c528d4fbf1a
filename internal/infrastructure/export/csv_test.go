package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"qacraft/internal/domain"
)

func TestWriteCSV(t *testing.T) {
	cases := []domain.TestCase{
		{
			ID:    "TC-1",
			Title: "Valid login",
			Steps: []domain.StepRow{
				{Step: "Open login page", ExpectedResult: "Form is shown"},
				{Step: "Submit credentials", ExpectedResult: ""},
			},
		},
		{ID: "TC-2", Title: "Empty case"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, cases); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	want := [][]string{
		{"Test Case Title", "Step", "Expected Result"},
		{"Valid login", "Open login page", "Form is shown"},
		{"", "Submit credentials", ""},
		{"Empty case", "", ""},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSVEscapesCommas(t *testing.T) {
	cases := []domain.TestCase{
		{Title: "One, two", Steps: []domain.StepRow{{Step: `Click "Save"`, ExpectedResult: "Saved"}}},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, cases); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if records[1][0] != "One, two" || records[1][1] != `Click "Save"` {
		t.Fatalf("quoting lost fields: %v", records[1])
	}
}
