package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	greyText    = &props.Color{Red: 80, Green: 80, Blue: 80}
	criticalRed = &props.Color{Red: 197, Green: 48, Blue: 48}
)

// GenerateChecklistPDF renders a checklist report as a landscape A4 PDF.
func GenerateChecklistPDF(r ChecklistReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addReportHeader(m, r)
	addChecklistTableHeader(m)

	section := ""
	for _, it := range r.Rows {
		if it.Section != section {
			section = it.Section
			addSectionRow(m, section)
		}
		addChecklistRow(m, it)
	}

	addReportSummary(m, r)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addReportHeader(m core.Maroto, r ChecklistReport) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(r.Title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}),
			),
		),
		row.New(8).Add(
			col.New(6).Add(
				text.New("Institution: "+r.Institution, props.Text{Size: 9, Align: align.Left, Color: greyText}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Code: %s | Version: %s | Date: %s", r.TemplateCode, r.Version, r.GeneratedDate),
					props.Text{Size: 9, Align: align.Right, Color: greyText}),
			),
		),
		row.New(4),
	)
}

func addChecklistTableHeader(m core.Maroto) {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Left,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}

	cols := []struct {
		size  int
		label string
	}{
		{1, "Code"}, {4, "Requirement"}, {1, "Critical"}, {1, "Status"}, {3, "Comment"}, {2, "Evidence URL"},
	}
	r := row.New(8)
	for _, c := range cols {
		r.Add(col.New(c.size).Add(text.New(c.label, headerText)).WithStyle(headerCell))
	}
	m.AddRows(r)
}

func addSectionRow(m core.Maroto, section string) {
	bg := &props.Cell{BackgroundColor: &props.Color{Red: 235, Green: 235, Blue: 235}}
	m.AddRows(
		row.New(7).Add(
			col.New(12).Add(
				text.New(section, props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left}),
			).WithStyle(bg),
		),
	)
}

func addChecklistRow(m core.Maroto, it ReportRow) {
	base := props.Text{Size: 7, Align: align.Left}
	critical := base
	critical.Style = fontstyle.Bold
	critical.Color = criticalRed

	flag := ""
	if it.Critical {
		flag = "CRITICAL"
	}
	status := it.Status
	if !it.Recorded {
		status += " *"
	}

	m.AddAutoRow(
		col.New(1).Add(text.New(it.Code, base)),
		col.New(4).Add(text.New(it.Requirement, base)),
		col.New(1).Add(text.New(flag, critical)),
		col.New(1).Add(text.New(status, base)),
		col.New(3).Add(text.New(it.Comment, base)),
		col.New(2).Add(text.New(it.EvidenceURL, base)),
	)
}

func addReportSummary(m core.Maroto, r ChecklistReport) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	for _, line := range r.SummaryLines() {
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(line[0], label)).WithStyle(summaryCell),
				col.New(4).Add(text.New(line[1], value)).WithStyle(summaryCell),
			),
		)
	}

	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New("* no compliance record yet, shown as No", props.Text{
					Size:  7,
					Align: align.Left,
					Color: &props.Color{Red: 140, Green: 140, Blue: 140},
				}),
			),
		),
	)
}
