package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// GenerateChecklistCSV renders a checklist report as CSV, one row per item.
// Cells go through the same formula escaping as the Excel export since
// spreadsheets open CSV files directly.
func GenerateChecklistCSV(r ChecklistReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{{"Section", "Code", "Requirement", "Critical", "Status", "Recorded", "Comment", "Evidence URL"}}
	for _, it := range r.Rows {
		records = append(records, []string{
			sanitizeExcelCell(it.Section),
			sanitizeExcelCell(it.Code),
			sanitizeExcelCell(it.Requirement),
			yesNo(it.Critical),
			it.Status,
			yesNo(it.Recorded),
			sanitizeExcelCell(it.Comment),
			sanitizeExcelCell(it.EvidenceURL),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
