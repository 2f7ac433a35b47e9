package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"portfolio_scraper/internal/infrastructure/restapi"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves profile snapshots over HTTP.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.zap.Sync()

		if !a.cfg.Logging.Development {
			gin.SetMode(gin.ReleaseMode)
		}

		sessions, closeSessions := a.sessionFactory("", "")
		defer closeSessions()
		handler := restapi.NewProfileHandler(a.profileService(sessions), a.logger)
		router := restapi.SetupRouter(handler)

		srv := &http.Server{
			Addr:         a.cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(a.cfg.Server.IdleTimeout) * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			a.zap.Info("Server starting", zap.String("port", a.cfg.Server.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case err := <-serveErr:
			if err != nil {
				return err
			}
		case <-cmd.Context().Done():
		}
		a.zap.Info("Shutting down server...")

		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			a.zap.Error("Server forced to shutdown", zap.Error(err))
			return err
		}
		a.zap.Info("Server exiting")
		return nil
	},
}
