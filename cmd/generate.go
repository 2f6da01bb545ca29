package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/analyzer"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
	"github.com/xkilldash9x/beacon-cli/internal/generator"
	"github.com/xkilldash9x/beacon-cli/internal/observability"
)

// newGenerateCmd creates the `generate` command: produce ranked selector
// strategies for one element of a document.
func newGenerateCmd() *cobra.Command {
	var (
		docPath   string
		cssTarget string
		action    string
		all       bool
	)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generates selector strategies for an element",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			gen := generator.New(logger)
			ov := generator.Overrides{Action: schemas.ActionKind(action)}
			if all {
				return printJSON(cmd.OutOrStdout(), gen.GenerateStrategies(analysis, ov))
			}
			return printJSON(cmd.OutOrStdout(), gen.Build(analysis, ov))
		},
	}

	generateCmd.Flags().StringVarP(&docPath, "file", "f", "-", "HTML document ('-' for stdin)")
	generateCmd.Flags().StringVarP(&cssTarget, "selector", "s", "", "CSS selector of the element to describe")
	generateCmd.Flags().StringVarP(&action, "action", "a", "extract", "action the generated tool performs (click|input|extract|wait|navigate)")
	generateCmd.Flags().BoolVar(&all, "all", false, "emit every candidate strategy instead of the best one")
	_ = generateCmd.MarkFlagRequired("selector")

	return generateCmd
}
