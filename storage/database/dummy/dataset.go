package dummydb

import (
	"context"
	"sort"

	"github.com/VatsalaGupta/FacultyAllocation/core/allocation"
)

type datasetRepository struct {
	datasets *datasetTable
	runs     *runTable
}

var _ allocation.Repository = (*datasetRepository)(nil) // interface compliance check

func NewDatasetRepository(db *DB) allocation.Repository {
	return &datasetRepository{datasets: db.dataset, runs: db.run}
}

func (repo *datasetRepository) CreateDataset(ctx context.Context, ds allocation.Dataset) (allocation.Dataset, error) {
	repo.datasets.Lock()
	defer repo.datasets.Unlock()

	repo.datasets.table[ds.ID] = &ds
	return ds, nil
}

func (repo *datasetRepository) QueryAllDatasets(ctx context.Context) ([]allocation.Dataset, error) {
	repo.datasets.RLock()
	defer repo.datasets.RUnlock()

	datasets := make([]allocation.Dataset, 0, len(repo.datasets.table))
	for _, ds := range repo.datasets.table {
		datasets = append(datasets, *ds)
	}
	sort.Slice(datasets, func(i, j int) bool {
		if !datasets[i].CreatedAt.Equal(datasets[j].CreatedAt) {
			return datasets[i].CreatedAt.After(datasets[j].CreatedAt)
		}
		return datasets[i].ID < datasets[j].ID
	})
	return datasets, nil
}

func (repo *datasetRepository) GetDatasetByID(ctx context.Context, id string) (allocation.Dataset, error) {
	repo.datasets.RLock()
	defer repo.datasets.RUnlock()

	if ds, ok := repo.datasets.table[id]; ok {
		return *ds, nil
	}
	return allocation.Dataset{}, allocation.ErrDatasetNotFound
}

func (repo *datasetRepository) DeleteDatasetsByID(ctx context.Context, ids ...string) error {
	repo.datasets.Lock()
	defer repo.datasets.Unlock()
	repo.runs.Lock()
	defer repo.runs.Unlock()

	for _, id := range ids {
		delete(repo.datasets.table, id)
		for runID, run := range repo.runs.table {
			if run.DatasetID == id {
				delete(repo.runs.table, runID)
			}
		}
	}
	return nil
}

func (repo *datasetRepository) CreateRun(ctx context.Context, run allocation.Run) (allocation.Run, error) {
	repo.runs.Lock()
	defer repo.runs.Unlock()

	repo.runs.table[run.ID] = &run
	return run, nil
}

func (repo *datasetRepository) GetRunByID(ctx context.Context, id string) (allocation.Run, error) {
	repo.runs.RLock()
	defer repo.runs.RUnlock()

	if run, ok := repo.runs.table[id]; ok {
		return *run, nil
	}
	return allocation.Run{}, allocation.ErrRunNotFound
}

func (repo *datasetRepository) QueryRunsByDatasetID(ctx context.Context, datasetID string) ([]allocation.Run, error) {
	repo.runs.RLock()
	defer repo.runs.RUnlock()

	runs := make([]allocation.Run, 0)
	for _, run := range repo.runs.table {
		if run.DatasetID == datasetID {
			runs = append(runs, *run)
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}
