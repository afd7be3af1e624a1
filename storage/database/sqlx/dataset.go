package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/VatsalaGupta/FacultyAllocation/core"
	"github.com/VatsalaGupta/FacultyAllocation/core/allocation"
)

type (
	datasetRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		Faculty   []byte    `db:"faculty"`
		Students  []byte    `db:"students"`
		CreatedAt time.Time `db:"created_at"`
	}

	runRow struct {
		ID          string    `db:"id"`
		DatasetID   string    `db:"dataset_id"`
		Assignments []byte    `db:"assignments"`
		CreatedAt   time.Time `db:"created_at"`
	}

	datasetRepository struct {
		db *sqlx.DB
	}
)

var _ allocation.Repository = (*datasetRepository)(nil) // interface compliance check

func NewDatasetRepository(db *sql.DB) allocation.Repository {
	return &datasetRepository{db: sqlx.NewDb(db, "postgres")}
}

// wrapErr annotates a database error. A dead connection is escalated to a
// shutdown error so the API stops taking requests.
func wrapErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrConnDone || err == driver.ErrBadConn {
		return errors.Wrap(core.NewShutdownError(err.Error()), msg)
	}
	return errors.Wrap(err, msg)
}

func (repo *datasetRepository) CreateDataset(ctx context.Context, ds allocation.Dataset) (allocation.Dataset, error) {
	facultyJSON, err := json.Marshal(ds.Faculty)
	if err != nil {
		return allocation.Dataset{}, errors.Wrap(err, "marshaling faculty")
	}
	studentsJSON, err := json.Marshal(ds.Students)
	if err != nil {
		return allocation.Dataset{}, errors.Wrap(err, "marshaling students")
	}

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO dataset (id, name, faculty, students, created_at) VALUES ($1, $2, $3, $4, $5)`,
		ds.ID, ds.Name, facultyJSON, studentsJSON, ds.CreatedAt,
	)
	if err != nil {
		return allocation.Dataset{}, wrapErr(err, "inserting dataset")
	}
	return ds, nil
}

func (repo *datasetRepository) QueryAllDatasets(ctx context.Context) ([]allocation.Dataset, error) {
	var rows []datasetRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, name, faculty, students, created_at FROM dataset ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, wrapErr(err, "querying datasets")
	}

	datasets := make([]allocation.Dataset, 0, len(rows))
	for _, row := range rows {
		ds, err := row.toDataset()
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

func (repo *datasetRepository) GetDatasetByID(ctx context.Context, id string) (allocation.Dataset, error) {
	var row datasetRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, name, faculty, students, created_at FROM dataset WHERE id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return allocation.Dataset{}, allocation.ErrDatasetNotFound
	}
	if err != nil {
		return allocation.Dataset{}, wrapErr(err, "getting dataset")
	}
	return row.toDataset()
}

func (repo *datasetRepository) DeleteDatasetsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM dataset WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building dataset delete")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return wrapErr(err, "deleting datasets")
	}
	return nil
}

func (repo *datasetRepository) CreateRun(ctx context.Context, run allocation.Run) (allocation.Run, error) {
	assignmentsJSON, err := json.Marshal(run.Assignments)
	if err != nil {
		return allocation.Run{}, errors.Wrap(err, "marshaling assignments")
	}

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO allocation_run (id, dataset_id, assignments, created_at) VALUES ($1, $2, $3, $4)`,
		run.ID, run.DatasetID, assignmentsJSON, run.CreatedAt,
	)
	if err != nil {
		return allocation.Run{}, wrapErr(err, "inserting run")
	}
	return run, nil
}

func (repo *datasetRepository) GetRunByID(ctx context.Context, id string) (allocation.Run, error) {
	var row runRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, dataset_id, assignments, created_at FROM allocation_run WHERE id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return allocation.Run{}, allocation.ErrRunNotFound
	}
	if err != nil {
		return allocation.Run{}, wrapErr(err, "getting run")
	}
	return row.toRun()
}

func (repo *datasetRepository) QueryRunsByDatasetID(ctx context.Context, datasetID string) ([]allocation.Run, error) {
	var rows []runRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, dataset_id, assignments, created_at FROM allocation_run WHERE dataset_id = $1 ORDER BY created_at DESC`,
		datasetID,
	)
	if err != nil {
		return nil, wrapErr(err, "querying runs")
	}

	runs := make([]allocation.Run, 0, len(rows))
	for _, row := range rows {
		run, err := row.toRun()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (row datasetRow) toDataset() (allocation.Dataset, error) {
	ds := allocation.Dataset{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal(row.Faculty, &ds.Faculty); err != nil {
		return allocation.Dataset{}, errors.Wrap(err, "unmarshaling faculty")
	}
	if err := json.Unmarshal(row.Students, &ds.Students); err != nil {
		return allocation.Dataset{}, errors.Wrap(err, "unmarshaling students")
	}
	return ds, nil
}

func (row runRow) toRun() (allocation.Run, error) {
	run := allocation.Run{
		ID:        row.ID,
		DatasetID: row.DatasetID,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal(row.Assignments, &run.Assignments); err != nil {
		return allocation.Run{}, errors.Wrap(err, "unmarshaling assignments")
	}
	return run, nil
}
