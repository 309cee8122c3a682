package handlers

import (
	"context"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"accredify/apiclient"
	"accredify/templates"
)

func HandleAssignmentList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		res := apiclient.Fetch(e.Request.Context(), d.clientFor(e).Assignments)
		if res.State == apiclient.Failed {
			zap.L().Warn("assignment_list: fetch failed", zap.Error(res.Err))
		}

		data := templates.FromResult(res)
		return render(e, statusFor(res.State),
			templates.AssignmentListContent(data),
			templates.AssignmentListPage(data, GetNavData(e.Request)))
	}
}

func HandleAssignmentView(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		client := d.clientFor(e)
		res := apiclient.Fetch(e.Request.Context(), func(ctx context.Context) (*apiclient.Assignment, error) {
			return client.Assignment(ctx, id)
		})
		if res.State == apiclient.Failed {
			zap.L().Warn("assignment_view: fetch failed", zap.String("id", id), zap.Error(res.Err))
		}

		data := templates.FromResult(res)
		return render(e, statusFor(res.State),
			templates.AssignmentViewContent(data),
			templates.AssignmentViewPage(data, GetNavData(e.Request)))
	}
}
