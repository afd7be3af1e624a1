package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/VatsalaGupta/FacultyAllocation/core/allocation"
	csvdata "github.com/VatsalaGupta/FacultyAllocation/storage/csv"
)

// allocate runs the full pipeline offline, no database involved:
// read the sheet, allocate and write the result tables.
func (cli *commandLine) allocate(in, out, stats string) error {
	f, err := os.Open(in)
	if err != nil {
		return errors.Wrap(err, "opening student sheet")
	}
	defer func() { _ = f.Close() }()

	ds, err := csvdata.ReadDataset(f)
	if err != nil {
		return err
	}
	assignments, err := allocation.AllocateDataset(ds)
	if err != nil {
		return err
	}

	outF, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "creating allocation file")
	}
	defer func() { _ = outF.Close() }()
	if err := csvdata.WriteAllocations(outF, ds, assignments); err != nil {
		return err
	}

	if stats != "" {
		statsF, err := os.Create(stats)
		if err != nil {
			return errors.Wrap(err, "creating statistics file")
		}
		defer func() { _ = statsF.Close() }()
		if err := csvdata.WriteStatistics(statsF, ds, allocation.CountPreferences(ds)); err != nil {
			return err
		}
	}

	fmt.Printf("allocated %d students to %d faculty in %d groups\n", ds.NumStudents(), ds.NumFaculty(), ds.NumGroups())
	return nil
}
