package cmd

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/actions"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
	"github.com/xkilldash9x/beacon-cli/internal/observability"
	"github.com/xkilldash9x/beacon-cli/internal/resolver"
	"github.com/xkilldash9x/beacon-cli/internal/runner"
)

// newResolveCmd creates the `resolve` command: run a saved tool definition
// against a document and execute its action.
func newResolveCmd() *cobra.Command {
	var (
		docPath  string
		specPath string
		pageURL  string
		varFlags []string
	)

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolves a tool's selector against a document and runs its action",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			var tool schemas.ToolRecord
			if err := loadJSONFile(specPath, &tool); err != nil {
				return err
			}
			vars, err := parseVars(varFlags)
			if err != nil {
				return err
			}

			var (
				root *html.Node
				exec actions.Executor
				done func()
			)
			if pageURL != "" {
				root, exec, ctx, done, err = attachBrowser(ctx, pageURL, logger)
				if err != nil {
					return err
				}
				defer done()
			} else {
				root, err = loadDocument(docPath)
				if err != nil {
					return err
				}
				exec = actions.NewStaticExecutor()
			}

			res := resolver.New(resolver.WithLogger(logger))
			resp := runner.New(res, exec, logger).Run(ctx, root, &tool, vars)
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("%s: %s", resp.Code, resp.Error)
			}
			return nil
		},
	}

	resolveCmd.Flags().StringVarP(&docPath, "file", "f", "-", "HTML document ('-' for stdin)")
	resolveCmd.Flags().StringVarP(&specPath, "spec", "t", "", "tool definition JSON file")
	resolveCmd.Flags().StringVarP(&pageURL, "url", "u", "", "resolve against a live page instead of a file")
	resolveCmd.Flags().StringArrayVar(&varFlags, "var", nil, "parameter value as key=value (repeatable)")
	_ = resolveCmd.MarkFlagRequired("spec")

	return resolveCmd
}

// attachBrowser starts a browser, navigates to the page and snapshots its
// DOM. The returned executor performs actions in the live page while the
// engine resolves against the snapshot; callers must run actions under the
// returned browser context.
func attachBrowser(ctx context.Context, pageURL string, logger *zap.Logger) (*html.Node, actions.Executor, context.Context, func(), error) {
	bc := appConfig.Browser()

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if !bc.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Sugar().Debugf))
	done := func() {
		browserCancel()
		allocCancel()
	}

	navCtx, cancel := context.WithTimeout(browserCtx, bc.NavigationTimeout)
	defer cancel()

	var outerHTML string
	err := chromedp.Run(navCtx,
		chromedp.Navigate(pageURL),
		chromedp.OuterHTML("html", &outerHTML, chromedp.ByQuery),
	)
	if err != nil {
		done()
		return nil, nil, nil, nil, fmt.Errorf("loading %s: %w", pageURL, err)
	}
	root, err := domtree.ParseString(outerHTML)
	if err != nil {
		done()
		return nil, nil, nil, nil, fmt.Errorf("parsing page snapshot: %w", err)
	}

	exec := actions.NewChromedpExecutor(logger, bc.WaitTimeout)
	return root, exec, browserCtx, done, nil
}
