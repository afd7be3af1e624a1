package allocation

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/VatsalaGupta/FacultyAllocation/core"
)

var errMissingPreference = errors.New("student is missing a preference entry")

// Allocate assigns every student of the ordered groups to exactly one faculty.
//
// Groups are processed in order; each starts with the full faculty pool in
// original column order. Within a group, students are taken in merit order and
// each claims the available faculty with the numerically smallest preference
// rank (first in column order on a tie). A claimed faculty is gone for the
// rest of the group; the next group starts with a fresh pool. Allocations are
// never revisited.
//
// A student whose preference map has no entry for a still-available faculty is
// a fatal data error.
func Allocate(groups []Group, faculty []string) (map[string]string, error) {
	assignments := make(map[string]string)

	for _, group := range groups {
		available := make([]string, len(faculty))
		copy(available, faculty)

		for _, stu := range group {
			best := -1
			bestRank := 0
			for i, fac := range available {
				rank, ok := stu.Prefs[fac]
				if !ok {
					return nil, core.NewValidationError(errMissingPreference, core.FieldError{
						Field: stu.Roll,
						Error: fmt.Sprintf("no preference rank for faculty %q", fac),
					})
				}
				if best == -1 || rank < bestRank {
					best, bestRank = i, rank
				}
			}

			if best == -1 { // group larger than the faculty pool; cannot happen for valid tiers
				assignments[stu.Roll] = Unallocated
				continue
			}
			assignments[stu.Roll] = available[best]
			available = append(available[:best], available[best+1:]...)
		}
	}
	return assignments, nil
}
