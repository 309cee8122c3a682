package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

func TestGenerateChecklistExcel_Basic(t *testing.T) {
	result, err := GenerateChecklistExcel(sampleReport(t))
	if err != nil {
		t.Fatalf("GenerateChecklistExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateChecklistExcel() returned empty bytes")
	}

	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 || sheets[0] != "PMDC-PG-2023" {
		t.Fatalf("expected sheet name 'PMDC-PG-2023', got %v", sheets)
	}

	cells := map[string]string{
		"A1": "PMDC PG Regulations 2023",
		"A2": "Institution: King Edward Medical University (Lahore)",
		"C5": "Requirement",
		"A6": "A: Infrastructure",
		"B6": "A.1",
		"D6": "CRITICAL",
		"E6": "Partial",
		"E7": "No",
		"G8": "https://e.example/doc",
	}
	for cell, want := range cells {
		got, _ := f.GetCellValue(sheets[0], cell)
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestGenerateChecklistExcel_SanitizesFormulas(t *testing.T) {
	result, err := GenerateChecklistExcel(sampleReport(t))
	if err != nil {
		t.Fatalf("GenerateChecklistExcel() error = %v", err)
	}
	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	got, _ := f.GetCellValue("PMDC-PG-2023", "F6")
	if got != "'=SUM(A1)" {
		t.Errorf("expected comment to be escaped, got %q", got)
	}
}

func TestGenerateChecklistExcel_LongCode(t *testing.T) {
	r := ChecklistReport{TemplateCode: "THIS-IS-A-VERY-LONG-TEMPLATE-CODE-2023"}
	result, err := GenerateChecklistExcel(r)
	if err != nil {
		t.Fatalf("GenerateChecklistExcel() error = %v", err)
	}
	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	if name := f.GetSheetList()[0]; len(name) > 31 {
		t.Errorf("sheet name %q longer than 31 chars", name)
	}
}

func TestGenerateChecklistExcel_UnsafeSheetName(t *testing.T) {
	r := ChecklistReport{TemplateCode: "PMDC/PG:2023 [draft]?"}
	result, err := GenerateChecklistExcel(r)
	if err != nil {
		t.Fatalf("GenerateChecklistExcel() error = %v", err)
	}
	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	if name := f.GetSheetList()[0]; name != "PMDC-PG-2023 (draft)" {
		t.Errorf("sheet name = %q", name)
	}
}

func TestExcelSheetName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "Checklist"},
		{"PMDC-PG-2023", "PMDC-PG-2023"},
		{`a\b*c`, "a-bc"},
		{"'quoted'", "quoted"},
		{"???", "Checklist"},
		{strings.Repeat("é", 40), strings.Repeat("é", 31)},
	}
	for _, tt := range tests {
		got := excelSheetName(tt.input)
		if got != tt.want {
			t.Errorf("excelSheetName(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("excelSheetName(%q) is not valid UTF-8", tt.input)
		}
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"plain", "plain"},
		{"=1+1", "'=1+1"},
		{"+x", "'+x"},
		{"-x", "'-x"},
		{"@x", "'@x"},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.input); got != tt.want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
