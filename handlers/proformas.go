package handlers

import (
	"context"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"accredify/apiclient"
	"accredify/templates"
)

func HandleProformaList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		res := apiclient.Fetch(e.Request.Context(), d.clientFor(e).Proformas)
		if res.State == apiclient.Failed {
			zap.L().Warn("proforma_list: fetch failed", zap.Error(res.Err))
		}

		data := templates.FromResult(res)
		return render(e, statusFor(res.State),
			templates.ProformaListContent(data),
			templates.ProformaListPage(data, GetNavData(e.Request)))
	}
}

// HandleProformaView shows one template with its sections and items.
func HandleProformaView(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		client := d.clientFor(e)
		res := apiclient.Fetch(e.Request.Context(), func(ctx context.Context) (*apiclient.ProformaTemplate, error) {
			return client.Proforma(ctx, id)
		})
		if res.State == apiclient.Failed {
			zap.L().Warn("proforma_view: fetch failed", zap.String("id", id), zap.Error(res.Err))
		}

		data := templates.FromResult(res)
		return render(e, statusFor(res.State),
			templates.ProformaViewContent(data),
			templates.ProformaViewPage(data, GetNavData(e.Request)))
	}
}
