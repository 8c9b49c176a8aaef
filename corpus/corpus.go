// Package corpus holds the fixed list of transliteration checks and the counts that the list is
// declared to have. The default corpus is embedded; an alternative can be loaded from a JSON or
// YAML file with the same schema.
package corpus

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

//go:embed data-files
var dataFilesRoot embed.FS

const defaultCorpusPath = "data-files/singlish.yaml"

// Category says which way a test case is expected to go.
type Category string

const (
	// Positive cases pass when the expected text is found.
	Positive Category = "positive"
	// Negative cases pass when the expected text is not found.
	Negative Category = "negative"
)

// TestCase is one input/expected-substring pair.
type TestCase struct {
	ID       string
	Name     string
	Category Category
	Input    string
	Expected string
	// ExpectMatch is true for Positive cases and false for Negative ones.
	ExpectMatch bool
	// Only marks a focused case; see Corpus.HasOnly.
	Only bool
	// KnownIssue, if set, explains why a failure of this case is expected for now. Such a
	// failure is reported but does not fail the run.
	KnownIssue string
}

// Title is the display name of the case, e.g. "Pos_001: Basic greeting".
func (tc TestCase) Title() string {
	if tc.Name == "" {
		return tc.ID
	}
	return tc.ID + ": " + tc.Name
}

// Declared holds the counts the corpus claims to contain. Meta is the number of checks that are
// not transliteration cases (the count verification itself).
type Declared struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Meta     int `json:"meta"`
	Total    int `json:"total"`
}

// Corpus is an ordered, read-only list of test cases.
type Corpus struct {
	Source   string
	Declared Declared
	cases    []TestCase
}

type corpusFile struct {
	Declared Declared         `json:"declared"`
	Cases    []testCaseRecord `json:"cases"`
}

type testCaseRecord struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Input       *string `json:"input"`
	Expected    string  `json:"expected"`
	ExpectMatch *bool   `json:"expectMatch"`
	Only        bool    `json:"only"`
	KnownIssue  string  `json:"knownIssue"`
}

// Default returns the embedded corpus.
func Default() (Corpus, error) {
	data, err := dataFilesRoot.ReadFile(defaultCorpusPath)
	if err != nil {
		return Corpus{}, fmt.Errorf("failed to read embedded corpus: %w", err)
	}
	return Parse(data, "embedded:"+filepath.Base(defaultCorpusPath))
}

// Load reads a corpus file from disk.
func Load(path string) (Corpus, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return Corpus{}, fmt.Errorf("failed to read corpus %q: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes JSON or YAML corpus data and validates every record. It does not check the
// declared counts; that is CheckCounts, which runs as a test of its own.
func Parse(data []byte, source string) (Corpus, error) {
	var file corpusFile
	if err := parseJSONOrYAML(data, &file); err != nil {
		return Corpus{}, fmt.Errorf("error parsing corpus %q: %w", source, err)
	}
	c := Corpus{Source: source, Declared: file.Declared}
	for i, r := range file.Cases {
		tc, err := r.toTestCase()
		if err != nil {
			return Corpus{}, fmt.Errorf("corpus %q, case %d (%s): %w", source, i+1, r.ID, err)
		}
		c.cases = append(c.cases, tc)
	}
	if err := c.Validate(); err != nil {
		return Corpus{}, fmt.Errorf("corpus %q: %w", source, err)
	}
	return c, nil
}

func (r testCaseRecord) toTestCase() (TestCase, error) {
	tc := TestCase{
		ID:         strings.TrimSpace(r.ID),
		Name:       r.Name,
		Category:   Category(strings.ToLower(r.Category)),
		Expected:   r.Expected,
		Only:       r.Only,
		KnownIssue: strings.TrimSpace(r.KnownIssue),
	}
	switch tc.Category {
	case Positive:
		tc.ExpectMatch = true
	case Negative:
		tc.ExpectMatch = false
	default:
		return TestCase{}, fmt.Errorf("unknown category %q", r.Category)
	}
	if r.ExpectMatch != nil && *r.ExpectMatch != tc.ExpectMatch {
		return TestCase{}, fmt.Errorf("expectMatch=%t contradicts category %q", *r.ExpectMatch, tc.Category)
	}
	if r.Input == nil {
		return TestCase{}, fmt.Errorf("missing input (use \"\" for an empty input)")
	}
	tc.Input = *r.Input
	return tc, nil
}

// New builds a corpus from already constructed cases, mostly for tests.
func New(declared Declared, cases ...TestCase) (Corpus, error) {
	c := Corpus{Source: "literal", Declared: declared, cases: slices.Clone(cases)}
	return c, c.Validate()
}

// Cases returns a copy of all cases in order.
func (c Corpus) Cases() []TestCase {
	return slices.Clone(c.cases)
}

func (c Corpus) Positive() []TestCase {
	return c.byCategory(Positive)
}

func (c Corpus) Negative() []TestCase {
	return c.byCategory(Negative)
}

func (c Corpus) byCategory(cat Category) []TestCase {
	var ret []TestCase
	for _, tc := range c.cases {
		if tc.Category == cat {
			ret = append(ret, tc)
		}
	}
	return ret
}

// Find returns the case with the given ID.
func (c Corpus) Find(id string) (TestCase, bool) {
	i := slices.IndexFunc(c.cases, func(tc TestCase) bool { return tc.ID == id })
	if i < 0 {
		return TestCase{}, false
	}
	return c.cases[i], true
}

// HasOnly reports whether any case is focused.
func (c Corpus) HasOnly() bool {
	return slices.ContainsFunc(c.cases, func(tc TestCase) bool { return tc.Only })
}

// GroupTitle is the name of the group a category's cases run under, e.g. "24 POSITIVE TESTS".
func (c Corpus) GroupTitle(cat Category) string {
	n := c.Declared.Positive
	if cat == Negative {
		n = c.Declared.Negative
	}
	return fmt.Sprintf("%d %s TESTS", n, strings.ToUpper(string(cat)))
}
