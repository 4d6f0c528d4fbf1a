// Package export renders generated test cases to interchange formats.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"qacraft/internal/domain"
)

var csvHeader = []string{"Test Case Title", "Step", "Expected Result"}

// WriteCSV writes one row per test step. The title appears only on the
// first row of each case so spreadsheets group visually.
func WriteCSV(w io.Writer, cases []domain.TestCase) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, tc := range cases {
		if len(tc.Steps) == 0 {
			if err := writer.Write([]string{tc.Title, "", ""}); err != nil {
				return err
			}
			continue
		}
		for i, row := range tc.Steps {
			title := ""
			if i == 0 {
				title = tc.Title
			}
			if err := writer.Write([]string{title, row.Step, row.ExpectedResult}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the cases to path, creating parent directories.
func WriteCSVFile(path string, cases []domain.TestCase) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, cases)
}
