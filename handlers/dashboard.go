package handlers

import (
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"accredify/apiclient"
	"accredify/templates"
)

// HandleDashboard shows the module and template counts.
func HandleDashboard(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		res := apiclient.Fetch(e.Request.Context(), d.clientFor(e).DashboardSummary)
		if res.State == apiclient.Failed {
			zap.L().Warn("dashboard: summary fetch failed", zap.Error(res.Err))
		}

		data := templates.FromResult(res)
		return render(e, statusFor(res.State),
			templates.DashboardContent(data),
			templates.DashboardPage(data, GetNavData(e.Request)))
	}
}
