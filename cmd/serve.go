package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	api_middleware "github.com/thesrcielos/PadelTracker/api/middleware"
	v1 "github.com/thesrcielos/PadelTracker/api/v1"
	"github.com/thesrcielos/PadelTracker/internal/dashboard"
	"github.com/thesrcielos/PadelTracker/internal/match"
	"github.com/thesrcielos/PadelTracker/internal/profile"
	"github.com/thesrcielos/PadelTracker/internal/skill"
	"github.com/thesrcielos/PadelTracker/internal/user"
	"github.com/thesrcielos/PadelTracker/pkg/db"
	"github.com/thesrcielos/PadelTracker/websocket"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API, the dashboard websocket and the session refresh sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := db.Init(ctx, cfg); err != nil {
			return err
		}
		defer db.Close()

		profiles := profile.NewGormRepository(db.DB)
		matches := match.NewGormRepository(db.DB)
		skills := skill.NewGormRepository(db.DB)
		authService := user.NewAuthService(
			user.NewGormUserRepository(db.DB),
			user.NewRedisTokenStore(db.Rdb, log),
			profiles,
			user.OptionsFromConfig(cfg.Auth),
			log,
		)
		for _, p := range user.NewOAuthProviders(cfg.OAuth) {
			authService.RegisterProvider(p)
			log.Info("oauth provider enabled", zap.String("provider", p.Name))
		}

		registry := dashboard.NewRegistry()
		sweeper, err := dashboard.NewSweeper(registry, cfg.Auth.RefreshSweepInterval, cfg.Auth.RefreshWindow, log)
		if err != nil {
			return err
		}
		if err := sweeper.Start(); err != nil {
			return err
		}
		defer sweeper.Stop()

		e := echo.New()
		e.HideBanner = true
		e.Use(middleware.Logger())
		e.Use(middleware.Recover())
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.Server.AllowedOrigins}))

		e.GET("/healthz", func(c echo.Context) error {
			return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
		})
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

		api := e.Group("/api/v1")
		v1.NewAuthHandler(authService, profiles, cfg.Auth.SiteURL, log).RegisterRoutes(api.Group("/auth"))
		protected := api.Group("", api_middleware.SetupJWTMiddleware(authService))
		v1.NewDashboardHandler(profiles, matches, skills, log).RegisterRoutes(protected)

		services := dashboard.Services{Auth: authService, Profiles: profiles, Matches: matches, Skills: skills}
		e.GET("/dashboard", websocket.NewHandler(registry, services, log).Serve)

		go func() {
			if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("server stopped", err)
				stop()
			}
		}()

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, c := range registry.All() {
			c.Close()
		}
		return e.Shutdown(shutdownCtx)
	},
}
