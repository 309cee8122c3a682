package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"accredify/apiclient"
	"accredify/checklist"
	"accredify/services"
)

var errExportSelection = errors.New("institution or template not found")

// buildChecklistReport loads the selected template, institution and records
// and flattens them into a report.
func buildChecklistReport(ctx context.Context, svc *checklist.Service, api checklist.API, institutionID, templateID string) (services.ChecklistReport, error) {
	var (
		cat   checklist.Catalog
		board *checklist.Board
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cat, err = svc.Load(gctx, api)
		return err
	})
	g.Go(func() (err error) {
		board, err = svc.Board(gctx, api, institutionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return services.ChecklistReport{}, err
	}

	tmpl := cat.Default
	if templateID != "" {
		tmpl = cat.Template(templateID)
	}
	inst := cat.Institution(institutionID)
	if tmpl == nil || inst == nil {
		return services.ChecklistReport{}, errExportSelection
	}
	return services.BuildChecklistReport(*tmpl, *inst, board, time.Now()), nil
}

func exportReport(e *core.RequestEvent, d *Deps, name string) (services.ChecklistReport, bool, error) {
	q := e.Request.URL.Query()
	institutionID := q.Get("institution")
	if institutionID == "" {
		return services.ChecklistReport{}, false, e.String(http.StatusBadRequest, "Missing institution")
	}

	report, err := buildChecklistReport(e.Request.Context(), d.Checklist, d.clientFor(e), institutionID, q.Get("template"))
	if errors.Is(err, errExportSelection) {
		return report, false, e.String(http.StatusNotFound, "Institution or template not found")
	}
	if err != nil {
		zap.L().Warn(name+": could not load checklist", zap.String("institution", institutionID), zap.Error(err))
		return report, false, e.String(http.StatusBadGateway, "Could not load checklist: "+apiclient.Reason(err))
	}
	return report, true, nil
}

// HandleChecklistExportExcel downloads the checklist for one institution as xlsx.
func HandleChecklistExportExcel(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		report, ok, err := exportReport(e, d, "export_excel")
		if !ok {
			return err
		}

		xlsxBytes, err := services.GenerateChecklistExcel(report)
		if err != nil {
			zap.L().Error("export_excel: failed to generate", zap.Error(err))
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ExportFilename(report, "xlsx")))
		_, err = e.Response.Write(xlsxBytes)
		return err
	}
}

// HandleChecklistExportPDF downloads the checklist for one institution as PDF.
func HandleChecklistExportPDF(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		report, ok, err := exportReport(e, d, "export_pdf")
		if !ok {
			return err
		}

		pdfBytes, err := services.GenerateChecklistPDF(report)
		if err != nil {
			zap.L().Error("export_pdf: failed to generate", zap.Error(err))
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ExportFilename(report, "pdf")))
		_, err = e.Response.Write(pdfBytes)
		return err
	}
}

// HandleChecklistExportCSV downloads the checklist for one institution as CSV.
func HandleChecklistExportCSV(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		report, ok, err := exportReport(e, d, "export_csv")
		if !ok {
			return err
		}

		csvBytes, err := services.GenerateChecklistCSV(report)
		if err != nil {
			zap.L().Error("export_csv: failed to generate", zap.Error(err))
			return e.String(http.StatusInternalServerError, "Failed to generate CSV file")
		}

		e.Response.Header().Set("Content-Type", "text/csv; charset=utf-8")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ExportFilename(report, "csv")))
		_, err = e.Response.Write(csvBytes)
		return err
	}
}
