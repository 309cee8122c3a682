package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// GenerateChecklistExcel renders a checklist report as an xlsx workbook.
func GenerateChecklistExcel(r ChecklistReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := excelSheetName(r.TemplateCode)
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	lastCol := columns[len(columns)-1]
	widths := []float64{26, 8, 50, 10, 10, 36, 36}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	rowStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create row style: %w", err)
	}
	criticalStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10, Bold: true, Color: "#C53030"},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create critical style: %w", err)
	}
	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	// Rows 1-3: title, institution, version and date.
	header := []string{
		r.Title,
		"Institution: " + r.Institution,
		fmt.Sprintf("Code: %s | Version: %s | Date: %s", r.TemplateCode, r.Version, r.GeneratedDate),
	}
	for i, line := range header {
		n := i + 1
		if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", n), fmt.Sprintf("%s%d", lastCol, n)); err != nil {
			return nil, fmt.Errorf("merge header row %d: %w", n, err)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", n), sanitizeExcelCell(line))
		style := subtitleStyle
		if i == 0 {
			style = titleStyle
		}
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", n), fmt.Sprintf("%s%d", lastCol, n), style)
	}

	headers := []string{"Section", "Code", "Requirement", "Critical", "Status", "Comment", "Evidence URL"}
	for i, h := range headers {
		f.SetCellValue(sheetName, columns[i]+"5", h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	row := 6
	for _, it := range r.Rows {
		n := fmt.Sprintf("%d", row)
		critical := ""
		if it.Critical {
			critical = "CRITICAL"
		}
		values := []string{it.Section, it.Code, it.Requirement, critical, it.Status, it.Comment, it.EvidenceURL}
		for i, v := range values {
			f.SetCellValue(sheetName, columns[i]+n, sanitizeExcelCell(v))
		}
		f.SetCellStyle(sheetName, "A"+n, lastCol+n, rowStyle)
		if it.Critical {
			f.SetCellStyle(sheetName, "D"+n, "D"+n, criticalStyle)
		}
		row++
	}

	row++
	for _, line := range r.SummaryLines() {
		n := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "C"+n, line[0]+":")
		f.SetCellStyle(sheetName, "C"+n, "C"+n, summaryLabelStyle)
		f.SetCellValue(sheetName, "D"+n, line[1])
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}

var sheetNameReplacer = strings.NewReplacer(
	":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")",
)

// excelSheetName makes a template code usable as a sheet name: no
// characters excelize rejects, no surrounding apostrophes, at most 31
// characters.
func excelSheetName(code string) string {
	name := strings.Trim(sheetNameReplacer.Replace(strings.TrimSpace(code)), "'")
	if runes := []rune(name); len(runes) > 31 {
		name = strings.TrimRight(string(runes[:31]), "'")
	}
	if name == "" {
		return "Checklist"
	}
	return name
}
