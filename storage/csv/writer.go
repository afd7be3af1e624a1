package csvdata

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/VatsalaGupta/FacultyAllocation/core/allocation"
)

// TableWriter plugs the CSV encoders into the allocation report email.
type TableWriter struct{}

var _ allocation.ReportWriter = TableWriter{} // interface compliance check

func (TableWriter) WriteAllocations(w io.Writer, ds allocation.Dataset, assignments map[string]string) error {
	return WriteAllocations(w, ds, assignments)
}

func (TableWriter) WriteStatistics(w io.Writer, ds allocation.Dataset, stats map[string][]int) error {
	return WriteStatistics(w, ds, stats)
}

// WriteAllocations writes the allocation table (Roll,Name,Email,CGPA,Allocated),
// one row per student in dataset order.
func WriteAllocations(w io.Writer, ds allocation.Dataset, assignments map[string]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Roll", "Name", "Email", "CGPA", "Allocated"}); err != nil {
		return errors.Wrap(err, "writing allocation header")
	}
	for _, stu := range ds.Students {
		fac, ok := assignments[stu.Roll]
		if !ok {
			fac = allocation.Unallocated
		}
		row := []string{stu.Roll, stu.Name, stu.Email, strconv.FormatFloat(stu.CGPA, 'f', -1, 64), fac}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "writing allocation row for %s", stu.Roll)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing allocation table")
}

// WriteStatistics writes the preference-statistics table
// (Fac,Count Pref 1..F), one row per faculty in original column order.
func WriteStatistics(w io.Writer, ds allocation.Dataset, stats map[string][]int) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, ds.NumFaculty()+1)
	header = append(header, "Fac")
	for r := 1; r <= ds.NumFaculty(); r++ {
		header = append(header, "Count Pref "+strconv.Itoa(r))
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing statistics header")
	}

	for _, fac := range ds.Faculty {
		row := make([]string, 0, len(header))
		row = append(row, fac)
		for _, n := range stats[fac] {
			row = append(row, strconv.Itoa(n))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "writing statistics row for %s", fac)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing statistics table")
}
