package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/observability"
	"github.com/xkilldash9x/beacon-cli/internal/toolstore"
	"github.com/xkilldash9x/beacon-cli/internal/validator"
)

// newToolsCmd creates the `tools` command group for managing the saved
// tool catalog directly against the configured database.
func newToolsCmd() *cobra.Command {
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Manages the saved tool catalog",
	}
	toolsCmd.AddCommand(newToolsListCmd())
	toolsCmd.AddCommand(newToolsSaveCmd())
	toolsCmd.AddCommand(newToolsDeleteCmd())
	return toolsCmd
}

// openStore connects to the configured tool database.
func openStore(ctx context.Context, logger *zap.Logger) (*toolstore.Store, func(), error) {
	url := appConfig.Store().URL
	if url == "" {
		return nil, nil, fmt.Errorf("no store URL configured (set store.url or BEACON_STORE_URL)")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to tool database: %w", err)
	}
	store, err := toolstore.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("initializing tool store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("preparing tool schema: %w", err)
	}
	return store, pool.Close, nil
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists saved tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, observability.GetLogger())
			if err != nil {
				return err
			}
			defer closeStore()

			tools, err := store.List(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tools)
		},
	}
}

func newToolsSaveCmd() *cobra.Command {
	var docPath string

	saveCmd := &cobra.Command{
		Use:   "save <tool.json>",
		Short: "Saves a tool definition, optionally validating it first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			var tool schemas.ToolRecord
			if err := loadJSONFile(args[0], &tool); err != nil {
				return err
			}
			if tool.Name == "" {
				return fmt.Errorf("tool name is required")
			}

			if docPath != "" {
				root, err := loadDocument(docPath)
				if err != nil {
					return err
				}
				result := validator.New(logger).Validate(ctx, root, tool.Spec, nil)
				if !result.Valid {
					return fmt.Errorf("tool %q failed validation: %s", tool.Name, result.Error)
				}
			}

			store, closeStore, err := openStore(ctx, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.Save(ctx, &tool); err != nil {
				return err
			}
			logger.Info("Tool saved", zap.String("tool", tool.Name), zap.String("id", tool.ID))
			return printJSON(cmd.OutOrStdout(), tool)
		},
	}

	saveCmd.Flags().StringVarP(&docPath, "validate-against", "f", "", "HTML document to validate the tool against before saving")
	return saveCmd
}

func newToolsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Deletes a saved tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, observability.GetLogger())
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
