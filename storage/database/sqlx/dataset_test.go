package sqlxrepos

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/pkg/errors"

	"github.com/VatsalaGupta/FacultyAllocation/core"
)

func TestWrapErr(t *testing.T) {
	if err := wrapErr(nil, "inserting dataset"); err != nil {
		t.Fatalf("wrapErr(nil) = %v; want nil", err)
	}

	err := wrapErr(errors.New("oops"), "inserting dataset")
	if core.IsShutdown(err) {
		t.Fatalf("wrapErr(%v) signals shutdown; want plain wrap", err)
	}
	if err.Error() != "inserting dataset: oops" {
		t.Fatalf("wrapErr() = %q; want the annotated error", err)
	}

	for _, cause := range []error{sql.ErrConnDone, driver.ErrBadConn} {
		err := wrapErr(cause, "getting run")
		if !core.IsShutdown(err) {
			t.Fatalf("wrapErr(%v) = %v; want a shutdown error", cause, err)
		}
	}
}
