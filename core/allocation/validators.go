package allocation

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/VatsalaGupta/FacultyAllocation/core"
)

var errInvalidDataset = errors.New("invalid dataset")

// Validate checks the dataset invariants before it reaches the engine:
// at least one faculty column, no duplicate faculty columns, no duplicate
// roll numbers, and per student a preference entry for every faculty with
// ranks forming a permutation of 1..F. All violations are reported at once.
func (ds Dataset) Validate() error {
	if len(ds.Faculty) == 0 {
		return ErrNoFaculty
	}

	var flds []core.FieldError
	numFaculty := len(ds.Faculty)

	seenFac := make(map[string]bool, numFaculty)
	for _, fac := range ds.Faculty {
		if seenFac[fac] {
			flds = append(flds, core.FieldError{Field: fac, Error: "duplicate faculty column"})
		}
		seenFac[fac] = true
	}

	seenRoll := make(map[string]bool, len(ds.Students))
	for _, stu := range ds.Students {
		if seenRoll[stu.Roll] {
			flds = append(flds, core.FieldError{Field: stu.Roll, Error: "duplicate roll number"})
			continue
		}
		seenRoll[stu.Roll] = true
		flds = append(flds, validatePrefs(stu, ds.Faculty)...)
	}

	if len(flds) > 0 {
		return core.NewValidationError(errInvalidDataset, flds...)
	}
	return nil
}

func validatePrefs(stu Student, faculty []string) []core.FieldError {
	var flds []core.FieldError

	seenRank := make(map[int]string, len(faculty))
	for _, fac := range faculty {
		rank, ok := stu.Prefs[fac]
		if !ok {
			flds = append(flds, core.FieldError{
				Field: stu.Roll,
				Error: fmt.Sprintf("missing preference for faculty %q", fac),
			})
			continue
		}
		if rank < 1 || rank > len(faculty) {
			flds = append(flds, core.FieldError{
				Field: stu.Roll,
				Error: fmt.Sprintf("preference %d for faculty %q is out of range [1,%d]", rank, fac, len(faculty)),
			})
			continue
		}
		if prev, dup := seenRank[rank]; dup {
			flds = append(flds, core.FieldError{
				Field: stu.Roll,
				Error: fmt.Sprintf("duplicate preference rank %d for faculty %q and %q", rank, prev, fac),
			})
			continue
		}
		seenRank[rank] = fac
	}
	return flds
}
