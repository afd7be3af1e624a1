package dummydb

import (
	"sync"

	"github.com/VatsalaGupta/FacultyAllocation/core/allocation"
)

type (
	DB struct {
		dataset *datasetTable
		run     *runTable
	}

	datasetTable struct {
		sync.RWMutex
		table map[string]*allocation.Dataset
	}

	runTable struct {
		sync.RWMutex
		table map[string]*allocation.Run
	}
)

func Open() (*DB, error) {
	db := &DB{
		dataset: &datasetTable{table: make(map[string]*allocation.Dataset)},
		run:     &runTable{table: make(map[string]*allocation.Run)},
	}
	return db, nil
}
