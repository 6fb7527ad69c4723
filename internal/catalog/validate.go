package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nicocardiel/repdoc/internal/domain"
)

// Validate checks a loaded catalog and returns every problem found.
func Validate(c *Catalog) []error {
	var errs []error

	if len(c.Degrees) == 0 {
		errs = append(errs, fmt.Errorf("no degrees found"))
	}
	for _, d := range c.Degrees {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("degree %s: name is required", d.ID))
		}
		for _, s := range c.Subjects[d.ID] {
			if s.InitialCredits < 0 {
				errs = append(errs, fmt.Errorf("subject %s (%s): negative initial credits %.4f", s.ID, s.Name, s.InitialCredits))
			}
		}
	}
	for _, a := range c.Applicants {
		if a.Quota < 0 {
			errs = append(errs, fmt.Errorf("applicant %s (%s): negative quota %.4f", a.ID, a.FullName(), a.Quota))
		}
	}

	if err := CheckUniqueIDs(c.IDs()); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// IDs returns every identifier in the catalog: degrees, subjects, applicants.
func (c *Catalog) IDs() []string {
	var ids []string
	for _, d := range c.Degrees {
		ids = append(ids, d.ID)
	}
	for _, d := range c.Degrees {
		for _, s := range c.Subjects[d.ID] {
			ids = append(ids, s.ID)
		}
	}
	for _, a := range c.Applicants {
		ids = append(ids, a.ID)
	}
	return ids
}

// CheckUniqueIDs fails when any identifier appears more than once.
func CheckUniqueIDs(ids []string) error {
	seen := make(map[string]int, len(ids))
	for _, id := range ids {
		seen[id]++
	}
	if len(seen) == len(ids) {
		return nil
	}
	var dups []string
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return fmt.Errorf("%w: %s", domain.ErrDuplicateID, strings.Join(dups, ", "))
}

func formatValidationErrors(errs []error) error {
	return fmt.Errorf("workbook validation failed (%d errors):\n%w", len(errs), errors.Join(errs...))
}
