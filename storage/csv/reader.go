package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/VatsalaGupta/FacultyAllocation/core"
	"github.com/VatsalaGupta/FacultyAllocation/core/allocation"
)

// expected leading columns, followed by one column per faculty
var baseColumns = [...]string{"Roll", "Name", "Email", "CGPA"}

var (
	errEmptyFile  = errors.New("empty CSV file")
	errBadSheet   = errors.New("invalid preference sheet")
	errBadColumns = errors.Errorf("the first columns must be %v followed by at least one faculty column", baseColumns)
)

// ReadDataset parses a student preference sheet of the form
// Roll,Name,Email,CGPA,<faculty...> into an unvalidated Dataset.
// The faculty count is the column count minus the four base columns;
// faculty order is the column order. Cell-level parse failures are collected
// into a single validation error naming the offending row and column.
func ReadDataset(r io.Reader) (allocation.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return allocation.Dataset{}, core.NewValidationError(errEmptyFile)
	}
	if err != nil {
		return allocation.Dataset{}, errors.Wrap(err, "reading CSV header")
	}

	if len(header) < len(baseColumns)+1 {
		return allocation.Dataset{}, core.NewValidationError(errBadColumns)
	}
	for i, col := range baseColumns {
		if core.CleanString(header[i]) != col {
			return allocation.Dataset{}, core.NewValidationError(errBadColumns, core.FieldError{
				Field: core.CleanString(header[i]),
				Error: fmt.Sprintf("column %d must be %q", i+1, col),
			})
		}
	}

	faculty := make([]string, 0, len(header)-len(baseColumns))
	for _, col := range header[len(baseColumns):] {
		faculty = append(faculty, core.CleanString(col))
	}

	var (
		students []allocation.Student
		flds     []core.FieldError
	)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return allocation.Dataset{}, errors.Wrapf(err, "reading CSV line %d", line)
		}

		stu, rowErrs := parseStudent(record, faculty, line)
		if len(rowErrs) > 0 {
			flds = append(flds, rowErrs...)
			continue
		}
		students = append(students, stu)
	}

	if len(flds) > 0 {
		return allocation.Dataset{}, core.NewValidationError(errBadSheet, flds...)
	}
	return allocation.Dataset{Faculty: faculty, Students: students}, nil
}

func parseStudent(record, faculty []string, line int) (allocation.Student, []core.FieldError) {
	stu := allocation.Student{
		Roll:  core.CleanString(record[0]),
		Name:  core.CleanString(record[1]),
		Email: core.CleanString(record[2], true /* lower */),
		Prefs: make(map[string]int, len(faculty)),
	}

	field := stu.Roll
	if field == "" {
		field = fmt.Sprintf("line %d", line)
	}

	var flds []core.FieldError
	if stu.Roll == "" {
		flds = append(flds, core.FieldError{Field: field, Error: "missing roll number"})
	}

	cgpa, err := strconv.ParseFloat(core.CleanString(record[3]), 64)
	if err != nil {
		flds = append(flds, core.FieldError{
			Field: field,
			Error: fmt.Sprintf("CGPA %q is not a number", record[3]),
		})
	}
	stu.CGPA = cgpa

	for i, fac := range faculty {
		rank, err := strconv.Atoi(core.CleanString(record[len(baseColumns)+i]))
		if err != nil {
			flds = append(flds, core.FieldError{
				Field: field,
				Error: fmt.Sprintf("preference %q for faculty %q is not an integer", record[len(baseColumns)+i], fac),
			})
			continue
		}
		stu.Prefs[fac] = rank
	}
	return stu, flds
}
