package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"gateworks-backend/controllers"
	"gateworks-backend/routes"
	"gateworks-backend/utils"
)

func newServeCommand() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Starts the HTTP API. When CRON_SCHEDULE is set the maintenance reminder
job also runs in-process on that schedule; otherwise it is expected to be
triggered through GET /api/cron/maintenance-reminders.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "Run database migrations on startup")
	return cmd
}

func runServe(autoMigrate bool) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	log := a.logger.Sugar()

	if autoMigrate {
		if err := a.migrate(); err != nil {
			return err
		}
	}

	if a.cfg.JWT.Secret == "" {
		return utils.ErrMissingSecret
	}

	if a.cfg.Cron.Schedule != "" {
		scheduler, err := a.reminders.StartScheduler(a.cfg.Cron.Schedule)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	gin.SetMode(a.cfg.Server.Mode)
	router := routes.SetupRouter(a.handlers())

	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", srv.Addr, "mode", a.cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}
	log.Info("server exited gracefully")
	return nil
}

func (a *app) handlers() routes.Handlers {
	jwt := utils.NewJWTManager(a.cfg.JWT.Secret, a.cfg.JWT.ExpiryHours)
	secure := a.cfg.Server.Mode == gin.ReleaseMode
	clock := controllers.BusinessClock{Location: a.location}

	return routes.Handlers{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		JWT:            jwt,
		LocalMediaRoot: a.localRoot,
		MaxUploadBytes: a.cfg.Images.MaxBytes,

		Auth:      &controllers.AuthController{JWT: jwt, SecureCookie: secure},
		Client:    &controllers.ClientController{Images: a.images},
		Profile:   &controllers.ProfileController{Images: a.images},
		Facility:  &controllers.FacilityController{Images: a.images, BusinessClock: clock},
		Catalog:   &controllers.CatalogController{Images: a.images},
		Media:     &controllers.MediaController{Pipeline: a.images, MaxFiles: a.cfg.Images.MaxFiles, MaxBytes: a.cfg.Images.MaxBytes},
		Reminder:  &controllers.ReminderController{Service: a.reminders, CronSecret: a.cfg.Cron.Secret},
		Report:    &controllers.ReportController{BusinessClock: clock},
		Dashboard: &controllers.DashboardController{BusinessClock: clock},
		Health:    &controllers.HealthController{Store: a.store},
		Cart:      &controllers.CartController{Service: a.carts},
	}
}
