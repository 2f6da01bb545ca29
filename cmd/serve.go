package cmd

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/beacon-cli/internal/observability"
	"github.com/xkilldash9x/beacon-cli/internal/server"
	"github.com/xkilldash9x/beacon-cli/internal/toolstore"
)

// newServeCmd creates the `serve` command: host saved tools over HTTP for
// other processes to invoke.
func newServeCmd() *cobra.Command {
	var (
		addr        string
		debugPacing bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the tool invocation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			if addr != "" {
				appConfig.SetServerAddr(addr)
			}
			if debugPacing {
				appConfig.SetEngineDebugPacing(true)
			}

			var store server.ToolStore
			if url := appConfig.Store().URL; url != "" {
				pool, err := pgxpool.New(ctx, url)
				if err != nil {
					return fmt.Errorf("connecting to tool database: %w", err)
				}
				defer pool.Close()
				dbStore, err := toolstore.New(ctx, pool, logger)
				if err != nil {
					return fmt.Errorf("initializing tool store: %w", err)
				}
				if err := dbStore.EnsureSchema(ctx); err != nil {
					return fmt.Errorf("preparing tool schema: %w", err)
				}
				store = dbStore
			} else {
				logger.Warn("No store URL configured, tools will not survive restarts")
				store = toolstore.NewMemory()
			}

			srv := server.New(appConfig.Server(), appConfig.Engine(), store, nil, logger)
			if err := srv.Start(ctx); err != nil {
				logger.Error("Invocation service stopped with error", zap.Error(err))
				return err
			}
			logger.Info("Invocation service stopped")
			return nil
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&debugPacing, "debug-pacing", false, "slow resolution phases for debug overlays")

	return serveCmd
}
