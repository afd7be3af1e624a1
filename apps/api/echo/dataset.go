package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/VatsalaGupta/FacultyAllocation/core"
	"github.com/VatsalaGupta/FacultyAllocation/core/allocation"
	csvdata "github.com/VatsalaGupta/FacultyAllocation/storage/csv"
)

type allocationApi struct {
	svc *allocation.Service
}

func registerAllocationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := allocationApi{svc: deps.AllocSvc}

	dg := g.Group("/datasets", jwt)
	dg.POST("", api.create)
	dg.GET("", api.query)
	dg.GET("/:id", api.retrieve)
	dg.DELETE("/:id", api.destroy)
	dg.GET("/:id/statistics", api.statistics)
	dg.POST("/:id/runs", api.allocate)
	dg.GET("/:id/runs", api.queryRuns)

	rg := g.Group("/runs", jwt)
	rg.GET("/:id", api.retrieveRun)
	rg.GET("/:id/allocations.csv", api.downloadAllocations)
	rg.GET("/:id/statistics.csv", api.downloadStatistics)
}

// Handlers

func (api *allocationApi) create(ctx echo.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "a CSV file is required"})
	}

	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = src.Close() }()

	ds, err := csvdata.ReadDataset(src)
	if err != nil {
		return errors.Wrap(err, "parsing uploaded sheet")
	}

	ds.Name = ctx.FormValue("name")
	if ds.Name == "" {
		ds.Name = file.Filename
	}

	ds, err = api.svc.ImportDataset(ctx.Request().Context(), ds)
	if err != nil {
		return errors.Wrap(err, "importing dataset")
	}
	return ctx.JSON(http.StatusCreated, newDatasetSummary(ds))
}

func (api *allocationApi) query(ctx echo.Context) error {
	datasets, err := api.svc.QueryAllDatasets(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying datasets")
	}

	summaries := make([]DatasetSummary, 0, len(datasets))
	for _, ds := range datasets {
		summaries = append(summaries, newDatasetSummary(ds))
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *allocationApi) retrieve(ctx echo.Context) error {
	ds, err := api.getDataset(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ds)
}

func (api *allocationApi) destroy(ctx echo.Context) error {
	ds, err := api.getDataset(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteDatasets(ctx.Request().Context(), ds.ID); err != nil {
		return errors.Wrap(err, "deleting dataset")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *allocationApi) statistics(ctx echo.Context) error {
	ds, err := api.getDataset(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statisticsTable(ds, allocation.CountPreferences(ds)))
}

func (api *allocationApi) allocate(ctx echo.Context) error {
	ds, err := api.getDataset(ctx)
	if err != nil {
		return err
	}

	run, err := api.svc.Allocate(ctx.Request().Context(), ds.ID)
	if err != nil {
		return errors.Wrap(err, "running allocation")
	}
	return ctx.JSON(http.StatusCreated, newRunDetail(ds, run))
}

func (api *allocationApi) queryRuns(ctx echo.Context) error {
	ds, err := api.getDataset(ctx)
	if err != nil {
		return err
	}

	runs, err := api.svc.QueryRunsByDataset(ctx.Request().Context(), ds.ID)
	if err != nil {
		return errors.Wrap(err, "querying runs")
	}

	details := make([]RunDetail, 0, len(runs))
	for _, run := range runs {
		details = append(details, newRunDetail(ds, run))
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *allocationApi) retrieveRun(ctx echo.Context) error {
	ds, run, err := api.getRun(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newRunDetail(ds, run))
}

func (api *allocationApi) downloadAllocations(ctx echo.Context) error {
	ds, run, err := api.getRun(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := csvdata.WriteAllocations(&buf, ds, run.Assignments); err != nil {
		return errors.Wrap(err, "writing allocation table")
	}
	return sendCSV(ctx, fmt.Sprintf("allocations-%s.csv", run.ID), buf.Bytes())
}

func (api *allocationApi) downloadStatistics(ctx echo.Context) error {
	ds, run, err := api.getRun(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := csvdata.WriteStatistics(&buf, ds, allocation.CountPreferences(ds)); err != nil {
		return errors.Wrap(err, "writing statistics table")
	}
	return sendCSV(ctx, fmt.Sprintf("statistics-%s.csv", run.ID), buf.Bytes())
}

// Helpers

func (api *allocationApi) getDataset(ctx echo.Context) (allocation.Dataset, error) {
	ds, err := api.svc.GetDatasetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == allocation.ErrDatasetNotFound {
			return allocation.Dataset{}, errHttpNotFound
		}
		return allocation.Dataset{}, errors.Wrap(err, "finding dataset by ID")
	}
	return ds, nil
}

func (api *allocationApi) getRun(ctx echo.Context) (allocation.Dataset, allocation.Run, error) {
	run, err := api.svc.GetRunByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == allocation.ErrRunNotFound {
			return allocation.Dataset{}, allocation.Run{}, errHttpNotFound
		}
		return allocation.Dataset{}, allocation.Run{}, errors.Wrap(err, "finding run by ID")
	}

	ds, err := api.svc.GetDatasetByID(ctx.Request().Context(), run.DatasetID)
	if err != nil {
		return allocation.Dataset{}, allocation.Run{}, errors.Wrap(err, "finding run dataset")
	}
	return ds, run, nil
}

func sendCSV(ctx echo.Context, filename string, body []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=`+filename)
	return ctx.Blob(http.StatusOK, "text/csv", body)
}

// Bindings

type (
	DatasetSummary struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		NumStudents int       `json:"num_students"`
		NumFaculty  int       `json:"num_faculty"`
		NumGroups   int       `json:"num_groups"`
		CreatedAt   time.Time `json:"created_at"`
	}

	StatisticsRow struct {
		Fac    string `json:"fac"`
		Counts []int  `json:"counts"` // index r holds the tally for preference rank r+1
	}

	RunDetail struct {
		ID             string             `json:"id"`
		DatasetID      string             `json:"dataset_id"`
		Assignments    map[string]string  `json:"assignments"`
		Metrics        allocation.Metrics `json:"metrics"`
		AllocatedStats []StatisticsRow    `json:"allocated_stats"`
		CreatedAt      time.Time          `json:"created_at"`
	}
)

func newDatasetSummary(ds allocation.Dataset) DatasetSummary {
	return DatasetSummary{
		ID:          ds.ID,
		Name:        ds.Name,
		NumStudents: ds.NumStudents(),
		NumFaculty:  ds.NumFaculty(),
		NumGroups:   ds.NumGroups(),
		CreatedAt:   ds.CreatedAt,
	}
}

func statisticsTable(ds allocation.Dataset, stats map[string][]int) []StatisticsRow {
	rows := make([]StatisticsRow, 0, ds.NumFaculty())
	for _, fac := range ds.Faculty {
		rows = append(rows, StatisticsRow{Fac: fac, Counts: stats[fac]})
	}
	return rows
}

func newRunDetail(ds allocation.Dataset, run allocation.Run) RunDetail {
	return RunDetail{
		ID:             run.ID,
		DatasetID:      run.DatasetID,
		Assignments:    run.Assignments,
		Metrics:        allocation.ComputeMetrics(ds, run.Assignments),
		AllocatedStats: statisticsTable(ds, allocation.CountAllocatedPreferences(ds, run.Assignments)),
		CreatedAt:      run.CreatedAt,
	}
}
