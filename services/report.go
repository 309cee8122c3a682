package services

import (
	"fmt"
	"time"

	"accredify/apiclient"
	"accredify/checklist"
)

// ReportRow is one checklist item in an export.
type ReportRow struct {
	Section     string // "A: Infrastructure"
	Code        string
	Requirement string
	Critical    bool
	Status      string // display label, e.g. "N/A"
	Comment     string
	EvidenceURL string
	Recorded    bool
}

// ChecklistReport holds everything an Excel or PDF export renders.
type ChecklistReport struct {
	Title         string
	TemplateCode  string
	Version       string
	Institution   string
	GeneratedDate string
	Rows          []ReportRow
	Summary       checklist.Summary
}

// BuildChecklistReport flattens a template and an institution's board into
// report rows, in section and item order.
func BuildChecklistReport(tmpl apiclient.ProformaTemplate, inst apiclient.Institution, board *checklist.Board, now time.Time) ChecklistReport {
	rows := board.Rows(tmpl)
	out := ChecklistReport{
		Title:         tmpl.Title,
		TemplateCode:  tmpl.Code,
		Version:       tmpl.Version,
		Institution:   inst.Label(),
		GeneratedDate: now.Format("02 Jan 2006"),
		Summary:       checklist.Summarize(rows),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, ReportRow{
			Section:     fmt.Sprintf("%s: %s", r.Section.Code, r.Section.Title),
			Code:        r.Item.Code,
			Requirement: r.Item.Requirement(),
			Critical:    r.Item.IsLicensingCritical,
			Status:      apiclient.StatusLabel(r.Effective.Status),
			Comment:     r.Effective.Comment,
			EvidenceURL: r.Effective.EvidenceURL,
			Recorded:    r.Effective.Recorded,
		})
	}
	return out
}

// SummaryLines renders the summary as label/value pairs shared by both
// export formats.
func (r ChecklistReport) SummaryLines() [][2]string {
	s := r.Summary
	lines := [][2]string{{"Total items", fmt.Sprintf("%d", s.Total)}}
	for _, st := range apiclient.Statuses {
		lines = append(lines, [2]string{apiclient.StatusLabel(st), fmt.Sprintf("%d", s.ByStatus[st])})
	}
	lines = append(lines,
		[2]string{"Not yet recorded", fmt.Sprintf("%d", s.Unrecorded)},
		[2]string{"Critical items not met", fmt.Sprintf("%d of %d", s.CriticalUnmet, s.CriticalTotal)},
		[2]string{"Compliance", fmt.Sprintf("%.1f%%", s.CompliancePercent)},
	)
	return lines
}

// ExportFilename builds a download name like "PMDC-PG-2023_King-Edward-Medical-University-Lahore.xlsx".
func ExportFilename(r ChecklistReport, ext string) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(r.TemplateCode), SanitizeFilename(r.Institution), ext)
}
