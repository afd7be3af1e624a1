package echoapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	emailsvc "github.com/VatsalaGupta/FacultyAllocation/services/email"
)

const sampleSheet = `Roll,Name,Email,CGPA,Dr. Rao,Dr. Iyer
R001,Asha,asha@uni.edu,9.1,1,2
R002,Vikram,vikram@uni.edu,8.7,1,2
R003,Neha,neha@uni.edu,8.9,2,1
`

func TestAllocationAPI(t *testing.T) {
	srv, _, conf := setup(t)
	token := getToken(t, conf)

	tests := []httpTest{
		{
			name:     "datasets require auth",
			method:   http.MethodGet,
			path:     "/v1/datasets",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "upload requires a file",
			method:   http.MethodPost,
			path:     "/v1/datasets",
			body:     []byte("{}"),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "a CSV file is required"}),
		},
		{
			name:     "dataset not found",
			method:   http.MethodGet,
			path:     "/v1/datasets/deadbeef",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "run not found",
			method:   http.MethodGet,
			path:     "/v1/runs/deadbeef",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	var ds DatasetSummary
	t.Run("upload ok", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/datasets", token, "Batch 2026", sampleSheet)
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &ds); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if ds.ID == "" {
			t.Error("failed! empty dataset ID")
		}
		if ds.Name != "Batch 2026" {
			t.Errorf("failed! name = %v; want %v", ds.Name, "Batch 2026")
		}
		if ds.NumStudents != 3 || ds.NumFaculty != 2 || ds.NumGroups != 2 {
			t.Errorf("failed! counts = (%d, %d, %d); want (3, 2, 2)", ds.NumStudents, ds.NumFaculty, ds.NumGroups)
		}
	})
	if ds.ID == "" {
		t.Fatal("upload did not yield a dataset; cannot continue")
	}

	t.Run("upload rejects invalid sheet", func(t *testing.T) {
		// duplicate preference ranks for R002
		sheet := "Roll,Name,Email,CGPA,Dr. Rao,Dr. Iyer\nR002,Vikram,vikram@uni.edu,8.7,1,1\n"
		req, rec := newUploadRequest(t, "/v1/datasets", token, "", sheet)
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
		var fldErrs map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &fldErrs); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if _, ok := fldErrs["R002"]; !ok {
			t.Errorf("failed! data = %v; want an error keyed on R002", rec.Body.String())
		}
	})

	t.Run("query datasets", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/datasets", token)
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var summaries []DatasetSummary
		if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(summaries) != 1 || summaries[0].ID != ds.ID {
			t.Errorf("failed! data = %v; want the uploaded dataset only", rec.Body.String())
		}
	})

	t.Run("dataset statistics", func(t *testing.T) {
		tt := httpTest{
			path:     "/v1/datasets/" + ds.ID + "/statistics",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []StatisticsRow{
				{Fac: "Dr. Rao", Counts: []int{2, 1}},
				{Fac: "Dr. Iyer", Counts: []int{1, 2}},
			}),
		}
		req, rec := newAuthRequest(http.MethodGet, tt.path, token)
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	var run RunDetail
	t.Run("allocate", func(t *testing.T) {
		sent := len(emailsvc.SentMessages)

		req, rec := newAuthRequest(http.MethodPost, "/v1/datasets/"+ds.ID+"/runs", token)
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}

		wantAssignments := map[string]string{
			"R001": "Dr. Rao",  // top of merit order, first choice
			"R003": "Dr. Iyer", // second in merit order, first choice
			"R002": "Dr. Rao",  // second group, pool is fresh again
		}
		if !reflect.DeepEqual(run.Assignments, wantAssignments) {
			t.Errorf("failed! assignments = %v; want %v", run.Assignments, wantAssignments)
		}
		if run.Metrics.AllocatedStudents != 3 || run.Metrics.GotFirstChoice != 3 {
			t.Errorf("failed! metrics = %+v; want 3 allocated, 3 first choices", run.Metrics)
		}
		if run.Metrics.MinPerFaculty != 1 || run.Metrics.MaxPerFaculty != 2 {
			t.Errorf("failed! metrics = %+v; want min 1, max 2 per faculty", run.Metrics)
		}

		if len(emailsvc.SentMessages) != sent+1 {
			t.Fatalf("failed! %d report(s) sent; want 1", len(emailsvc.SentMessages)-sent)
		}
		report := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		if len(report.Attachments) != 2 {
			t.Fatalf("failed! report has %d attachment(s); want 2", len(report.Attachments))
		}
		if got := report.Attachments[0].Filename; got != "allocations-"+run.ID+".csv" {
			t.Errorf("failed! first attachment = %v; want the allocation table", got)
		}
		if got := report.Attachments[1].Filename; got != "statistics-"+run.ID+".csv" {
			t.Errorf("failed! second attachment = %v; want the statistics table", got)
		}
		wantStats := "Fac,Count Pref 1,Count Pref 2\n" +
			"Dr. Rao,2,1\n" +
			"Dr. Iyer,1,2\n"
		if got := report.Attachments[1].Content.String(); got != wantStats {
			t.Errorf("failed! statistics attachment = %v; want %v", got, wantStats)
		}
	})
	if run.ID == "" {
		t.Fatal("allocation did not yield a run; cannot continue")
	}

	t.Run("query runs", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/datasets/"+ds.ID+"/runs", token)
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var details []RunDetail
		if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(details) != 1 || details[0].ID != run.ID {
			t.Errorf("failed! data = %v; want the created run only", rec.Body.String())
		}
	})

	t.Run("retrieve run", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/runs/"+run.ID, token)
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var detail RunDetail
		if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if detail.DatasetID != ds.ID {
			t.Errorf("failed! dataset ID = %v; want %v", detail.DatasetID, ds.ID)
		}
	})

	t.Run("download allocations", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/runs/"+run.ID+"/allocations.csv", token)
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		want := "Roll,Name,Email,CGPA,Allocated\n" +
			"R001,Asha,asha@uni.edu,9.1,Dr. Rao\n" +
			"R002,Vikram,vikram@uni.edu,8.7,Dr. Rao\n" +
			"R003,Neha,neha@uni.edu,8.9,Dr. Iyer\n"
		if got := rec.Body.String(); got != want {
			t.Errorf("failed! data = %v; want %v", got, want)
		}
	})

	t.Run("download statistics", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/runs/"+run.ID+"/statistics.csv", token)
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		want := "Fac,Count Pref 1,Count Pref 2\n" +
			"Dr. Rao,2,1\n" +
			"Dr. Iyer,1,2\n"
		if got := rec.Body.String(); got != want {
			t.Errorf("failed! data = %v; want %v", got, want)
		}
	})

	t.Run("delete dataset", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/datasets/"+ds.ID, token)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		// runs are cascaded
		req, rec = newAuthRequest(http.MethodGet, "/v1/runs/"+run.ID, token)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})
}
