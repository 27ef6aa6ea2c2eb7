package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ethan2004g/interactive-web-novels/pkg/fakeapi"
	"github.com/ethan2004g/interactive-web-novels/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var devServerCmd = &cobra.Command{
	Use:         "dev-server",
	Short:       "Run an in-memory backend for trying the client",
	Annotations: map[string]string{skipRuntime: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		demo, _ := cmd.Flags().GetBool("demo")

		logger, err := logging.New(verbose, "")
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		backend := fakeapi.New(fakeapi.WithLogger(logger))
		if demo {
			backend.SeedDemo()
		}

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		srv := &http.Server{Handler: backend.Handler(), ReadHeaderTimeout: 10 * time.Second}

		fmt.Printf("🚀 Serving http://%s%s\n", ln.Addr(), fakeapi.Prefix)
		if demo {
			fmt.Println("   accounts: author/password, reader/password")
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve(ln) }()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
		return nil
	},
}

func init() {
	devServerCmd.Flags().String("addr", "127.0.0.1:8000", "Listen address")
	devServerCmd.Flags().Bool("demo", true, "Seed demo users and books")
}
