package services

import "testing"

func TestGenerateChecklistPDF_Basic(t *testing.T) {
	result, err := GenerateChecklistPDF(sampleReport(t))
	if err != nil {
		t.Fatalf("GenerateChecklistPDF() error = %v", err)
	}
	if len(result) < 5 {
		t.Fatal("GenerateChecklistPDF() returned too few bytes")
	}
	if string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGenerateChecklistPDF_EmptyReport(t *testing.T) {
	result, err := GenerateChecklistPDF(ChecklistReport{Title: "Empty"})
	if err != nil {
		t.Fatalf("GenerateChecklistPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateChecklistPDF() returned empty bytes")
	}
}
