package main

import (
	"log"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"accredify/apiclient"
	"accredify/checklist"
	"accredify/collections"
	"accredify/config"
	"accredify/handlers"
	"accredify/logging"
	"accredify/session"
)

func main() {
	app := pocketbase.New()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("Warning: %v", err)
	}
	v := config.New()
	if err := config.BindFlags(app.RootCmd, v); err != nil {
		log.Fatal(err)
	}

	// Flags are only parsed once the serve command runs, so everything that
	// reads config is built here.
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		cfg := config.Load(v)

		logger, err := logging.New(cfg.LogLevel, cfg.Dev)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)

		if err := collections.Setup(app); err != nil {
			return err
		}

		store := session.NewStore(app, cfg.SessionTTL)
		if n, err := store.PurgeExpired(); err != nil {
			zap.L().Warn("startup: session purge failed", zap.Error(err))
		} else if n > 0 {
			zap.L().Info("startup: purged expired sessions", zap.Int("count", n))
		}
		app.Cron().MustAdd("purge_console_sessions", "0 * * * *", func() {
			if _, err := store.PurgeExpired(); err != nil {
				zap.L().Warn("cron: session purge failed", zap.Error(err))
			}
		})

		var opts []apiclient.Option
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, apiclient.WithTimeout(cfg.HTTPTimeout))
		}
		deps := &handlers.Deps{
			App:    app,
			Client: apiclient.New(cfg.APIBase, nil, opts...),
			Sessions: &session.Manager{
				Store:  store,
				Cookie: cfg.SessionCookie,
				Secure: !cfg.Dev,
			},
			Checklist: checklist.NewService(cfg.TemplateCode),
		}
		zap.L().Info("console configured",
			zap.String("api_base", cfg.APIBase),
			zap.String("template_code", cfg.TemplateCode))

		registerRoutes(se, deps)
		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func registerRoutes(se *core.ServeEvent, d *handlers.Deps) {
	se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

	se.Router.BindFunc(handlers.SessionMiddleware(d))

	// ── Public ───────────────────────────────────────────────
	se.Router.GET("/{$}", handlers.HandleHome(d))
	se.Router.GET("/login", handlers.HandleLoginPage(d))
	se.Router.POST("/login", handlers.HandleLogin(d))
	se.Router.POST("/logout", handlers.HandleLogout(d))

	// ── Signed in ────────────────────────────────────────────
	g := se.Router.Group("")
	g.BindFunc(handlers.RequireSession(d))

	g.GET("/dashboard", handlers.HandleDashboard(d))
	g.GET("/modules", handlers.HandleModuleList(d))
	g.GET("/modules/{id}", handlers.HandleModuleView(d))
	g.GET("/proformas", handlers.HandleProformaList(d))
	g.GET("/proformas/{id}", handlers.HandleProformaView(d))
	g.GET("/assignments", handlers.HandleAssignmentList(d))
	g.GET("/assignments/{id}", handlers.HandleAssignmentView(d))

	// ── PG regulations checklist ─────────────────────────────
	g.GET("/pg-regulations", handlers.HandleChecklist(d))
	g.POST("/pg-regulations/items/{itemId}/status", handlers.HandleItemStatus(d))
	g.POST("/pg-regulations/items/{itemId}/comment", handlers.HandleItemComment(d))
	g.POST("/pg-regulations/items/{itemId}/evidence", handlers.HandleItemEvidence(d))
	g.GET("/pg-regulations/export/excel", handlers.HandleChecklistExportExcel(d))
	g.GET("/pg-regulations/export/pdf", handlers.HandleChecklistExportPDF(d))
	g.GET("/pg-regulations/export/csv", handlers.HandleChecklistExportCSV(d))
}
