package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/observability"
	"github.com/xkilldash9x/beacon-cli/internal/validator"
)

// newValidateCmd creates the `validate` command: dry-run a selector spec
// against a document and report match diagnostics without executing any
// action.
func newValidateCmd() *cobra.Command {
	var (
		docPath  string
		specPath string
		varFlags []string
	)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Checks that a selector spec resolves against a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			var spec schemas.SelectorSpec
			if err := loadJSONFile(specPath, &spec); err != nil {
				return err
			}
			vars, err := parseVars(varFlags)
			if err != nil {
				return err
			}
			root, err := loadDocument(docPath)
			if err != nil {
				return err
			}

			result := validator.New(logger).Validate(cmd.Context(), root, spec, vars)
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("selector did not resolve: %s", result.Error)
			}
			return nil
		},
	}

	validateCmd.Flags().StringVarP(&docPath, "file", "f", "-", "HTML document ('-' for stdin)")
	validateCmd.Flags().StringVarP(&specPath, "spec", "t", "", "selector spec JSON file")
	validateCmd.Flags().StringArrayVar(&varFlags, "var", nil, "parameter value as key=value (repeatable)")
	_ = validateCmd.MarkFlagRequired("spec")

	return validateCmd
}
