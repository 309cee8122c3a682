package handlers

import (
	"context"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"accredify/apiclient"
	"accredify/templates"
)

func HandleModuleList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		res := apiclient.Fetch(e.Request.Context(), d.clientFor(e).Modules)
		if res.State == apiclient.Failed {
			zap.L().Warn("module_list: fetch failed", zap.Error(res.Err))
		}

		data := templates.FromResult(res)
		return render(e, statusFor(res.State),
			templates.ModuleListContent(data),
			templates.ModuleListPage(data, GetNavData(e.Request)))
	}
}

func HandleModuleView(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		client := d.clientFor(e)
		res := apiclient.Fetch(e.Request.Context(), func(ctx context.Context) (*apiclient.Module, error) {
			return client.Module(ctx, id)
		})
		if res.State == apiclient.Failed {
			zap.L().Warn("module_view: fetch failed", zap.String("id", id), zap.Error(res.Err))
		}

		data := templates.FromResult(res)
		return render(e, statusFor(res.State),
			templates.ModuleViewContent(data),
			templates.ModuleViewPage(data, GetNavData(e.Request)))
	}
}
