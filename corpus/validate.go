package corpus

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Validate checks the individual records: IDs are present and unique, every case has an expected
// substring and a known category.
func (c Corpus) Validate() error {
	var errs []error
	seen := make(map[string]int)
	for i, tc := range c.cases {
		if tc.ID == "" {
			errs = append(errs, fmt.Errorf("case %d has no id", i+1))
		} else {
			seen[tc.ID]++
		}
		if tc.Expected == "" {
			errs = append(errs, fmt.Errorf("case %s has an empty expected substring", tc.ID))
		}
		if tc.Category != Positive && tc.Category != Negative {
			errs = append(errs, fmt.Errorf("case %s has unknown category %q", tc.ID, tc.Category))
		}
	}
	var dups []string
	for _, id := range maps.Keys(seen) {
		if seen[id] > 1 {
			dups = append(dups, id)
		}
	}
	if len(dups) != 0 {
		slices.Sort(dups)
		errs = append(errs, fmt.Errorf("duplicate case ids: %s", strings.Join(dups, ", ")))
	}
	return errors.Join(errs...)
}

// CheckCounts compares the corpus with its declared counts.
func (c Corpus) CheckCounts() error {
	var errs []error
	if n := len(c.Positive()); n != c.Declared.Positive {
		errs = append(errs, fmt.Errorf("declared %d positive cases but found %d", c.Declared.Positive, n))
	}
	if n := len(c.Negative()); n != c.Declared.Negative {
		errs = append(errs, fmt.Errorf("declared %d negative cases but found %d", c.Declared.Negative, n))
	}
	d := c.Declared
	if sum := d.Positive + d.Negative + d.Meta; sum != d.Total {
		errs = append(errs, fmt.Errorf("declared counts %d + %d + %d = %d, not the declared total %d",
			d.Positive, d.Negative, d.Meta, sum, d.Total))
	}
	return errors.Join(errs...)
}
