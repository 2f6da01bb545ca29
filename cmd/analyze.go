package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/beacon-cli/internal/analyzer"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
	"github.com/xkilldash9x/beacon-cli/internal/observability"
	"github.com/xkilldash9x/beacon-cli/internal/suggest"
)

// newAnalyzeCmd creates the `analyze` command: inspect one element of a
// document and report its containers, anchor candidates and ancestry.
func newAnalyzeCmd() *cobra.Command {
	var (
		docPath    string
		cssTarget  string
		useSuggest bool
	)

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyzes an element's context for durable selector generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			root, err := loadDocument(docPath)
			if err != nil {
				return err
			}
			node := domtree.QueryOne(root, cssTarget)
			if node == nil {
				return fmt.Errorf("no element matches %q", cssTarget)
			}

			policy, err := loadPolicy()
			if err != nil {
				return fmt.Errorf("loading analyzer policy: %w", err)
			}
			analysis := analyzer.New(policy, logger).Analyze(node)

			if err := printJSON(cmd.OutOrStdout(), analysis); err != nil {
				return err
			}

			if !useSuggest {
				return nil
			}
			sc := appConfig.Suggest()
			if !sc.Enabled || sc.APIKey == "" {
				return fmt.Errorf("suggestions require suggest.enabled and an API key (BEACON_SUGGEST_API_KEY)")
			}
			client, err := suggest.NewClient(ctx, sc.APIKey, sc.Model, logger)
			if err != nil {
				return fmt.Errorf("initializing suggestion client: %w", err)
			}
			strategy, err := client.Suggest(ctx, analysis)
			if err != nil {
				logger.Warn("Suggestion request failed", zap.Error(err))
				return err
			}
			return printJSON(cmd.OutOrStdout(), strategy)
		},
	}

	analyzeCmd.Flags().StringVarP(&docPath, "file", "f", "-", "HTML document to analyze ('-' for stdin)")
	analyzeCmd.Flags().StringVarP(&cssTarget, "selector", "s", "", "CSS selector of the element to analyze")
	analyzeCmd.Flags().BoolVar(&useSuggest, "suggest", false, "ask the configured model for a strategy suggestion")
	_ = analyzeCmd.MarkFlagRequired("selector")

	return analyzeCmd
}
