package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"accredify/apiclient"
	"accredify/checklist"
	"accredify/templates"
)

const statusUpdateFailed = "Failed to update compliance status"

// HandleChecklist renders the PG regulations checklist for the selected
// institution and template. Without a template query parameter the
// well-known template is used when the backend has it.
func HandleChecklist(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		api := d.clientFor(e)
		q := e.Request.URL.Query()

		data, status := buildChecklistData(ctx, d.Checklist, api, q.Get("institution"), q.Get("template"))
		return render(e, status,
			templates.ChecklistContent(data),
			templates.ChecklistPage(data, GetNavData(e.Request)))
	}
}

func buildChecklistData(ctx context.Context, svc *checklist.Service, api checklist.API, institutionID, templateID string) (templates.ChecklistData, int) {
	var data templates.ChecklistData

	cat, err := svc.Load(ctx, api)
	if err != nil {
		zap.L().Warn("pg_regulations: catalog load failed", zap.Error(err))
		data.State = apiclient.Failed
		data.Reason = apiclient.Reason(err)
		return data, http.StatusBadGateway
	}
	data.State = apiclient.Loaded

	tmpl := cat.Default
	if templateID != "" {
		tmpl = cat.Template(templateID)
	}
	if tmpl != nil {
		data.Template = tmpl
		data.TemplateID = tmpl.ID
	}
	if cat.Institution(institutionID) != nil {
		data.InstitutionID = institutionID
	}

	for _, inst := range cat.Institutions {
		data.Institutions = append(data.Institutions, templates.Option{
			Value: inst.ID, Label: inst.Label(), Selected: inst.ID == data.InstitutionID,
		})
	}
	for _, t := range cat.Templates {
		data.Templates = append(data.Templates, templates.Option{
			Value: t.ID, Label: t.Title, Selected: t.ID == data.TemplateID,
		})
	}
	data.ShowTemplateSelect = len(cat.Templates) > 1

	if data.InstitutionID == "" || tmpl == nil {
		return data, http.StatusOK
	}

	board, err := svc.Board(ctx, api, data.InstitutionID)
	if err != nil {
		zap.L().Warn("pg_regulations: compliance load failed",
			zap.String("institution", data.InstitutionID), zap.Error(err))
		data.BoardReason = apiclient.Reason(err)
		return data, http.StatusBadGateway
	}

	rows := board.Rows(*tmpl)
	data.Summary = checklist.Summarize(rows)
	data.Sections = checklistSections(data.InstitutionID, tmpl, rows)
	return data, http.StatusOK
}

// checklistSections groups rows back into the template's sections, keeping
// sections that have no items.
func checklistSections(institutionID string, tmpl *apiclient.ProformaTemplate, rows []checklist.Row) []templates.ChecklistSectionData {
	bySection := map[string][]templates.ChecklistItemData{}
	for _, r := range rows {
		bySection[r.Section.ID] = append(bySection[r.Section.ID], templates.NewChecklistItem(institutionID, tmpl.ID, r))
	}

	sections := make([]templates.ChecklistSectionData, 0, len(tmpl.Sections))
	for _, s := range tmpl.Sections {
		sections = append(sections, templates.ChecklistSectionData{
			ID:          s.ID,
			Code:        s.Code,
			Title:       s.Title,
			Description: s.Description,
			Items:       bySection[s.ID],
		})
	}
	return sections
}

// itemWrite is one field edit from the checklist page.
type itemWrite func(ctx context.Context, api checklist.API, institution, item, value string) (*apiclient.Compliance, error)

// HandleItemStatus sets an item's status. When the write fails the item is
// re-rendered as the backend still has it, so the radio the user clicked
// falls back to the stored status, and an error toast is shown.
func HandleItemStatus(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		institution := e.Request.FormValue("institution")
		item := e.Request.PathValue("itemId")
		if institution == "" || item == "" {
			return ErrorToast(e, http.StatusBadRequest, statusUpdateFailed)
		}

		ctx := e.Request.Context()
		api := d.clientFor(e)
		rec, err := d.Checklist.SetStatus(ctx, api, institution, item, e.Request.FormValue("status"))
		if err == nil {
			return renderItem(e, institution, item, checklist.EffectiveCompliance(rec))
		}
		zap.L().Warn("pg_regulations: status update failed",
			zap.String("institution", institution), zap.String("item", item), zap.Error(err))
		if errors.Is(err, checklist.ErrInvalidInput) {
			return ErrorToast(e, http.StatusBadRequest, statusUpdateFailed)
		}

		prior := shownItem(e.Request)
		if stored, ferr := d.Checklist.Find(ctx, api, institution, item); ferr != nil {
			zap.L().Warn("pg_regulations: could not re-read item, restoring last rendered status",
				zap.String("institution", institution), zap.String("item", item), zap.Error(ferr))
		} else {
			prior = checklist.EffectiveCompliance(stored)
		}
		SetToast(e, "error", statusUpdateFailed)
		return renderItem(e, institution, item, prior)
	}
}

// HandleItemComment replaces an item's comment.
func HandleItemComment(d *Deps) func(*core.RequestEvent) error {
	return handleSilentWrite(d, "comment", "comment", d.Checklist.SetComment)
}

// HandleItemEvidence replaces an item's evidence URL.
func HandleItemEvidence(d *Deps) func(*core.RequestEvent) error {
	return handleSilentWrite(d, "evidence", "evidence_url", d.Checklist.SetEvidence)
}

// handleSilentWrite applies a comment or evidence edit. A failed write puts
// the stored values back without a toast. Edits on items without a record
// are ignored.
func handleSilentWrite(d *Deps, name, field string, write itemWrite) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		institution := e.Request.FormValue("institution")
		item := e.Request.PathValue("itemId")
		ctx := e.Request.Context()
		api := d.clientFor(e)

		rec, err := write(ctx, api, institution, item, e.Request.FormValue(field))
		if err == nil {
			return renderItem(e, institution, item, checklist.EffectiveCompliance(rec))
		}
		if errors.Is(err, checklist.ErrNoRecord) {
			zap.L().Debug("pg_regulations: "+name+" edit without record",
				zap.String("institution", institution), zap.String("item", item))
			return noSwap(e)
		}
		zap.L().Warn("pg_regulations: "+name+" update failed",
			zap.String("institution", institution), zap.String("item", item), zap.Error(err))

		stored, err := d.Checklist.Find(ctx, api, institution, item)
		if err != nil {
			zap.L().Warn("pg_regulations: could not re-read item after failed "+name+" update",
				zap.String("institution", institution), zap.String("item", item), zap.Error(err))
			return noSwap(e)
		}
		return renderItem(e, institution, item, checklist.EffectiveCompliance(stored))
	}
}

// shownItem is the item's state as the page last rendered it, read back
// from the hidden inputs its form posts.
func shownItem(r *http.Request) checklist.Effective {
	status := r.FormValue("shown_status")
	if !apiclient.ValidStatus(status) {
		status = apiclient.StatusNo
	}
	return checklist.Effective{
		Status:      status,
		Comment:     r.FormValue("comment"),
		EvidenceURL: r.FormValue("evidence_url"),
		Recorded:    r.FormValue("recorded") == "true",
	}
}

// renderItem re-renders one checklist item. The item's display fields come
// from the hidden inputs of its form, so no template fetch is needed.
func renderItem(e *core.RequestEvent, institution, item string, eff checklist.Effective) error {
	r := e.Request
	row := checklist.Row{
		Item: apiclient.ProformaItem{
			ID:                   item,
			Code:                 r.FormValue("code"),
			RequirementText:      r.FormValue("requirement"),
			RequiredEvidenceType: r.FormValue("evidence_type"),
			IsLicensingCritical:  r.FormValue("critical") == "true",
		},
		Effective: eff,
	}
	e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	return templates.ChecklistItem(templates.NewChecklistItem(institution, r.FormValue("template"), row)).
		Render(r.Context(), e.Response)
}

func noSwap(e *core.RequestEvent) error {
	e.Response.Header().Set("HX-Reswap", "none")
	return e.NoContent(http.StatusNoContent)
}
