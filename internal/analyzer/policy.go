package analyzer

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Policy holds the heuristic tables the analyzer scores with. Everything
// here is tunable data, not control flow: thresholds and vocabularies load
// from a YAML file so they can be adjusted and tested independently.
type Policy struct {
	// SemanticAttributes are attribute names whose values identify elements
	// reliably (automation hooks, ARIA labelling).
	SemanticAttributes []string
	// TestIDAttributes is the priority-ordered subset used for minimal
	// selector generation.
	TestIDAttributes []string
	// LowEntropyWords is the fixed status/action vocabulary that repeats
	// across rows and cannot anchor one of them.
	LowEntropyWords map[string]bool
	// ClassHints boost anchor confidence when a class suggests identity.
	ClassHints *regexp.Regexp
	// VolatileID rejects auto-generated ids.
	VolatileID *regexp.Regexp
	// UnsafeClass rejects framework-generated and state/variant classes
	// from selectors.
	UnsafeClass *regexp.Regexp
	// StableStructural recognizes human-authored structural class names.
	StableStructural *regexp.Regexp
	// GenericClass marks layout-only classes scoring zero.
	GenericClass *regexp.Regexp
	// ClassScores grades recognized class patterns for ancestor scoring.
	ClassScores []ClassScore
	// RowLikeTags are preferred repeating-container tags.
	RowLikeTags map[string]bool
	// GranularTags never qualify as containers (cells, headings, inline).
	GranularTags map[string]bool
	// GenericTags require class-set overlap for sibling similarity.
	GenericTags map[string]bool
	// SemanticTags qualify as semantic containers when they carry a class.
	SemanticTags map[string]bool
	// ToolbarClass recognizes button toolbars whose anchor children must
	// not be misread as list cards.
	ToolbarClass *regexp.Regexp
	// SalientTags raise anchor base confidence.
	SalientTags map[string]bool

	// Thresholds.
	MaxAncestorDepth   int
	SiblingSampleSize  int
	SemanticRootScore  float64
	IntermediateScore  float64
	LowEntropyPenalty  float64
	MinTextLen         int
	MaxTextLen         int
	MaxAnchorCandidates int
}

// ClassScore pairs a class-name pattern with its semantic strength.
type ClassScore struct {
	Pattern *regexp.Regexp
	Score   float64
}

// policyFile is the YAML override shape. Absent fields keep defaults.
type policyFile struct {
	SemanticAttributes []string           `yaml:"semantic_attributes"`
	TestIDAttributes   []string           `yaml:"test_id_attributes"`
	LowEntropyWords    []string           `yaml:"low_entropy_words"`
	ClassHints         string             `yaml:"class_hints"`
	VolatileID         string             `yaml:"volatile_id"`
	UnsafeClass        string             `yaml:"unsafe_class"`
	StableStructural   string             `yaml:"stable_structural"`
	GenericClass       string             `yaml:"generic_class"`
	ClassScores        []classScoreEntry  `yaml:"class_scores"`
	RowLikeTags        []string           `yaml:"row_like_tags"`
	GranularTags       []string           `yaml:"granular_tags"`
	SemanticTags       []string           `yaml:"semantic_tags"`
	MaxAncestorDepth   *int               `yaml:"max_ancestor_depth"`
	SiblingSampleSize  *int               `yaml:"sibling_sample_size"`
	SemanticRootScore  *float64           `yaml:"semantic_root_score"`
	IntermediateScore  *float64           `yaml:"intermediate_score"`
	LowEntropyPenalty  *float64           `yaml:"low_entropy_penalty"`
}

type classScoreEntry struct {
	Pattern string  `yaml:"pattern"`
	Score   float64 `yaml:"score"`
}

// DefaultPolicy returns the built-in heuristic tables.
func DefaultPolicy() *Policy {
	return &Policy{
		SemanticAttributes: []string{"role", "aria-label", "title", "data-testid", "data-test-id", "data-qa", "name"},
		TestIDAttributes:   []string{"data-testid", "data-test-id", "data-qa"},
		LowEntropyWords: wordSet(
			"active", "inactive", "enabled", "disabled", "pending", "approved",
			"rejected", "open", "closed", "new", "done", "failed", "success",
			"error", "warning", "yes", "no", "ok", "on", "off", "true", "false",
			"edit", "delete", "view", "add", "remove", "save", "cancel",
			"submit", "confirm", "detail", "details", "more", "all", "none",
			"status", "action", "actions", "total", "n/a", "-", "--",
		),
		ClassHints:       regexp.MustCompile(`(?i)(name|title|label|user|email|product|subject|key|primary)`),
		VolatileID:       regexp.MustCompile(`\d{5,}|(?i)(uuid|uid|random|generated|ember\d*|react|radix|headlessui|:r[0-9a-z]+:)|^[0-9a-f]{8,}$`),
		UnsafeClass:      regexp.MustCompile(`\[|^(hover|focus|active|visited|disabled|first|last|odd|even|sm|md|lg|xl|2xl):|^(css|sc|jsx|chakra|Mui|ant|v|svelte)-|^.$|^\d+$`),
		StableStructural: regexp.MustCompile(`(?i)(header|footer|sidebar|search|form|panel|toolbar|navbar|nav-|menu|modal|dialog|breadcrumb|pagination|filter|tabs?)`),
		GenericClass:     regexp.MustCompile(`(?i)^(container|wrapper|inner|outer|row|col|cols?-\d+|box|flex|grid|item|block|d-\w+|mt?-\d+|p[txybrl]?-\d+|w-\d+|h-\d+|text-\w+|bg-\w+)$`),
		ClassScores: []ClassScore{
			{regexp.MustCompile(`(?i)(header|navbar|sidebar|footer|main-content|app-shell)`), 0.9},
			{regexp.MustCompile(`(?i)(panel|modal|dialog|drawer|toolbar|menu)`), 0.8},
			{regexp.MustCompile(`(?i)(search|form|filter|settings|profile)`), 0.7},
			{regexp.MustCompile(`(?i)(table|list|results|pagination|breadcrumb)`), 0.6},
			{regexp.MustCompile(`(?i)(card|widget|section|content|body)`), 0.4},
		},
		RowLikeTags:  wordSet("tr", "li", "article", "section"),
		GranularTags: wordSet("td", "th", "span", "a", "b", "i", "em", "strong", "label", "small", "code", "h1", "h2", "h3", "h4", "h5", "h6"),
		GenericTags:  wordSet("div", "span", "p", "section"),
		SemanticTags: wordSet("header", "nav", "main", "footer", "aside", "section", "article", "form"),
		ToolbarClass: regexp.MustCompile(`(?i)(toolbar|btn-group|button-group|action-bar|actions)`),
		SalientTags:  wordSet("h1", "h2", "h3", "h4", "h5", "h6", "th", "strong", "b", "a", "td"),

		MaxAncestorDepth:    6,
		SiblingSampleSize:   6,
		SemanticRootScore:   0.7,
		IntermediateScore:   0.5,
		LowEntropyPenalty:   0.3,
		MinTextLen:          2,
		MaxTextLen:          100,
		MaxAnchorCandidates: 5,
	}
}

// LoadPolicy reads YAML overrides on top of the defaults. An empty path
// returns the defaults untouched.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
	}
	if err := p.apply(pf); err != nil {
		return nil, fmt.Errorf("applying policy file %s: %w", path, err)
	}
	return p, nil
}

func (p *Policy) apply(pf policyFile) error {
	if len(pf.SemanticAttributes) > 0 {
		p.SemanticAttributes = pf.SemanticAttributes
	}
	if len(pf.TestIDAttributes) > 0 {
		p.TestIDAttributes = pf.TestIDAttributes
	}
	if len(pf.LowEntropyWords) > 0 {
		p.LowEntropyWords = wordSet(pf.LowEntropyWords...)
	}
	for _, spec := range []struct {
		expr string
		dst  **regexp.Regexp
	}{
		{pf.ClassHints, &p.ClassHints},
		{pf.VolatileID, &p.VolatileID},
		{pf.UnsafeClass, &p.UnsafeClass},
		{pf.StableStructural, &p.StableStructural},
		{pf.GenericClass, &p.GenericClass},
	} {
		if spec.expr == "" {
			continue
		}
		re, err := regexp.Compile(spec.expr)
		if err != nil {
			return err
		}
		*spec.dst = re
	}
	if len(pf.ClassScores) > 0 {
		scores := make([]ClassScore, 0, len(pf.ClassScores))
		for _, cs := range pf.ClassScores {
			re, err := regexp.Compile(cs.Pattern)
			if err != nil {
				return err
			}
			scores = append(scores, ClassScore{Pattern: re, Score: cs.Score})
		}
		p.ClassScores = scores
	}
	if len(pf.RowLikeTags) > 0 {
		p.RowLikeTags = wordSet(pf.RowLikeTags...)
	}
	if len(pf.GranularTags) > 0 {
		p.GranularTags = wordSet(pf.GranularTags...)
	}
	if len(pf.SemanticTags) > 0 {
		p.SemanticTags = wordSet(pf.SemanticTags...)
	}
	if pf.MaxAncestorDepth != nil {
		p.MaxAncestorDepth = *pf.MaxAncestorDepth
	}
	if pf.SiblingSampleSize != nil {
		p.SiblingSampleSize = *pf.SiblingSampleSize
	}
	if pf.SemanticRootScore != nil {
		p.SemanticRootScore = *pf.SemanticRootScore
	}
	if pf.IntermediateScore != nil {
		p.IntermediateScore = *pf.IntermediateScore
	}
	if pf.LowEntropyPenalty != nil {
		p.LowEntropyPenalty = *pf.LowEntropyPenalty
	}
	return nil
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
