package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/beacon-cli/internal/analyzer"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// loadDocument parses an HTML document from a file path, or from stdin
// when the path is "-".
func loadDocument(path string) (*html.Node, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening document: %w", err)
		}
		defer f.Close()
		r = f
	}
	root, err := domtree.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return root, nil
}

// loadJSONFile decodes a JSON file into v.
func loadJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// printJSON writes indented JSON to the command's stdout.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parseVars turns repeated key=value flags into a substitution map.
func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", p)
		}
		vars[k] = v
	}
	return vars, nil
}

// loadPolicy resolves the analyzer policy, honoring the configured
// override file when present.
func loadPolicy() (*analyzer.Policy, error) {
	if appConfig == nil || appConfig.Engine().PolicyFile == "" {
		return analyzer.DefaultPolicy(), nil
	}
	return analyzer.LoadPolicy(appConfig.Engine().PolicyFile)
}
