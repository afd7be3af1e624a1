package echoapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/VatsalaGupta/FacultyAllocation/core"
	"github.com/VatsalaGupta/FacultyAllocation/core/allocation"
	emailsvc "github.com/VatsalaGupta/FacultyAllocation/services/email"
	csvdata "github.com/VatsalaGupta/FacultyAllocation/storage/csv"
	dummydb "github.com/VatsalaGupta/FacultyAllocation/storage/database/dummy"
)

const testStaffPassword = "t3st-p@ssw0rd"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func newTestConfig(t *testing.T) *core.Config {
	hash, err := bcrypt.GenerateFromPassword([]byte(testStaffPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("newTestConfig() failed: %v", err)
	}
	return &core.Config{
		AppName:          "FacultyAllocation",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "s3cr3t",
		ReportRecipients: []string{"reports@test.edu"},
		Staff: core.StaffConfig{
			Username:     "staff",
			Email:        "staff@test.edu",
			PasswordHash: string(hash),
		},
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

func setup(t *testing.T) (Server, *allocation.Service, *core.Config) {
	conf := newTestConfig(t)

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewDatasetRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	allocSvc := allocation.NewService(repo, mailSvc, csvdata.TableWriter{}, conf)

	validate := validator.New()
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	trans, _ := uni.GetTranslator("en")
	core.InitValidators(validate, trans)

	// set up server
	srv := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     testLogger{t},
		AllocSvc:   allocSvc,
		Validate:   validate,
		Translator: trans,
	})
	return srv, allocSvc, conf
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Enable(bool)                           {}
func (l testLogger) Debug(msg string, args ...interface{}) {}
func (l testLogger) Info(msg string, args ...interface{})  {}
func (l testLogger) Warn(msg string, args ...interface{})  {}
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newUploadRequest builds a multipart dataset upload request.
func newUploadRequest(t *testing.T, path, token, name, sheet string) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		if err := mw.WriteField("name", name); err != nil {
			t.Fatalf("newUploadRequest() failed: %v", err)
		}
	}
	fw, err := mw.CreateFormFile("file", "students.csv")
	if err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	if _, err = fw.Write([]byte(sheet)); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	if err = mw.Close(); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config) string {
	token, err := GenerateToken(GetStaffClaims(conf))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
