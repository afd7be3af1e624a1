package allocation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/VatsalaGupta/FacultyAllocation/core"
)

type (
	Repository interface {
		CreateDataset(ctx context.Context, ds Dataset) (Dataset, error)
		QueryAllDatasets(ctx context.Context) ([]Dataset, error)
		GetDatasetByID(ctx context.Context, id string) (Dataset, error)
		DeleteDatasetsByID(ctx context.Context, ids ...string) error

		CreateRun(ctx context.Context, run Run) (Run, error)
		GetRunByID(ctx context.Context, id string) (Run, error)
		// QueryRunsByDatasetID returns runs most recent first.
		QueryRunsByDatasetID(ctx context.Context, datasetID string) ([]Run, error)
	}

	// ReportWriter renders a run's output tables; they are attached to the
	// report email after each run.
	ReportWriter interface {
		WriteAllocations(w io.Writer, ds Dataset, assignments map[string]string) error
		WriteStatistics(w io.Writer, ds Dataset, stats map[string][]int) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		tables  ReportWriter
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, tables ReportWriter, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, tables: tables, conf: conf}
}

// ImportDataset validates and stores a freshly loaded dataset.
func (svc *Service) ImportDataset(ctx context.Context, ds Dataset) (Dataset, error) {
	ds.Name = core.CleanString(ds.Name)
	if ds.Name == "" {
		ds.Name = "dataset-" + time.Now().UTC().Format("20060102-150405")
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	ds.ID = uuid.New().String()
	ds.CreatedAt = time.Now().UTC()
	return svc.repo.CreateDataset(ctx, ds)
}

func (svc *Service) QueryAllDatasets(ctx context.Context) ([]Dataset, error) {
	return svc.repo.QueryAllDatasets(ctx)
}

func (svc *Service) GetDatasetByID(ctx context.Context, id string) (Dataset, error) {
	return svc.repo.GetDatasetByID(ctx, id)
}

func (svc *Service) DeleteDatasets(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteDatasetsByID(ctx, ids...)
}

// Allocate runs the sort -> partition -> allocate pipeline over the dataset,
// persists the run and emails the summary report to the configured recipients.
func (svc *Service) Allocate(ctx context.Context, datasetID string) (Run, error) {
	ds, err := svc.repo.GetDatasetByID(ctx, datasetID)
	if err != nil {
		return Run{}, err
	}

	assignments, err := AllocateDataset(ds)
	if err != nil {
		return Run{}, err
	}

	run := Run{
		ID:          uuid.New().String(),
		DatasetID:   ds.ID,
		Assignments: assignments,
		CreatedAt:   time.Now().UTC(),
	}
	run, err = svc.repo.CreateRun(ctx, run)
	if err != nil {
		return Run{}, errors.Wrap(err, "persisting run")
	}

	svc.sendRunReport(ds, run)
	return run, nil
}

func (svc *Service) GetRunByID(ctx context.Context, id string) (Run, error) {
	return svc.repo.GetRunByID(ctx, id)
}

func (svc *Service) QueryRunsByDataset(ctx context.Context, datasetID string) ([]Run, error) {
	if _, err := svc.repo.GetDatasetByID(ctx, datasetID); err != nil {
		return nil, err
	}
	return svc.repo.QueryRunsByDatasetID(ctx, datasetID)
}

// AllocateDataset is the full in-memory pipeline: a pure function of the
// dataset, usable without a Service for one-shot runs.
func AllocateDataset(ds Dataset) (map[string]string, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	sorted := SortByMerit(ds.Students)
	groups, err := PartitionGroups(sorted, ds.NumFaculty())
	if err != nil {
		return nil, err
	}
	return Allocate(groups, ds.Faculty)
}

func (svc *Service) sendRunReport(ds Dataset, run Run) {
	if len(svc.conf.ReportRecipients) == 0 {
		return
	}
	to := make([]mail.Address, 0, len(svc.conf.ReportRecipients))
	for _, addr := range svc.conf.ReportRecipients {
		to = append(to, mail.Address{Address: addr})
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          to,
		Subject:     fmt.Sprintf("Allocation completed for %q", ds.Name),
		BodyStr:     RenderReport(ds, run),
		Attachments: svc.reportAttachments(ds, run),
	})
}

// reportAttachments renders the allocation and statistics tables for the
// report email. A table that fails to render is left off; the report body
// still goes out.
func (svc *Service) reportAttachments(ds Dataset, run Run) []core.Attachment {
	if svc.tables == nil {
		return nil
	}

	var atts []core.Attachment
	var alloc bytes.Buffer
	if err := svc.tables.WriteAllocations(&alloc, ds, run.Assignments); err == nil {
		atts = append(atts, core.Attachment{
			Content:     &alloc,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("allocations-%s.csv", run.ID),
		})
	}
	var stats bytes.Buffer
	if err := svc.tables.WriteStatistics(&stats, ds, CountPreferences(ds)); err == nil {
		atts = append(atts, core.Attachment{
			Content:     &stats,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("statistics-%s.csv", run.ID),
		})
	}
	return atts
}

// RenderReport formats the plain-text summary report for an allocation run.
func RenderReport(ds Dataset, run Run) string {
	m := ComputeMetrics(ds, run.Assignments)

	var b strings.Builder
	fmt.Fprintf(&b, "Allocation summary for dataset %q (run %s)\n\n", ds.Name, run.ID)
	fmt.Fprintf(&b, "Total students:           %d\n", m.TotalStudents)
	fmt.Fprintf(&b, "Total faculty:            %d\n", m.TotalFaculty)
	fmt.Fprintf(&b, "Number of groups:         %d\n", m.NumGroups)
	fmt.Fprintf(&b, "Students allocated:       %d\n", m.AllocatedStudents)
	fmt.Fprintf(&b, "Average preference rank:  %.2f (1 = first choice)\n", m.AverageRank)
	fmt.Fprintf(&b, "Min students per faculty: %d\n", m.MinPerFaculty)
	fmt.Fprintf(&b, "Max students per faculty: %d\n", m.MaxPerFaculty)
	if m.AllocatedStudents > 0 {
		pct := func(n int) float64 { return float64(n) * 100 / float64(m.AllocatedStudents) }
		fmt.Fprintf(&b, "\nGot 1st preference:   %d (%.1f%%)\n", m.GotFirstChoice, pct(m.GotFirstChoice))
		fmt.Fprintf(&b, "Got top-2 preference: %d (%.1f%%)\n", m.GotTopTwo, pct(m.GotTopTwo))
		fmt.Fprintf(&b, "Got top-3 preference: %d (%.1f%%)\n", m.GotTopThree, pct(m.GotTopThree))
	}
	return b.String()
}
