package main

import (
	"database/sql"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/VatsalaGupta/FacultyAllocation/core"
)

const sampleSheet = `Roll,Name,Email,CGPA,Dr. Rao,Dr. Iyer
R001,Asha,asha@uni.edu,9.1,1,2
R002,Vikram,vikram@uni.edu,8.7,1,2
R003,Neha,neha@uni.edu,8.9,2,1
`

func setup(t *testing.T) *commandLine {
	return &commandLine{
		conf: &core.Config{
			Database: core.DatabaseConfig{
				Engine:     "postgres",
				Name:       "allocation_test",
				Host:       "localhost",
				Port:       "5432",
				DisableTLS: true,
			},
		},
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_allocate(t *testing.T) {
	cli := setup(t)

	dir := t.TempDir()
	in := filepath.Join(dir, "students.csv")
	out := filepath.Join(dir, "allocations.csv")
	stats := filepath.Join(dir, "statistics.csv")
	if err := ioutil.WriteFile(in, []byte(sampleSheet), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	noFacultyIn := filepath.Join(dir, "nofaculty.csv")
	if err := ioutil.WriteFile(noFacultyIn, []byte("Roll,Name,Email,CGPA\nR001,Asha,asha@uni.edu,9.1\n"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	singleFacultyIn := filepath.Join(dir, "singlefaculty.csv")
	if err := ioutil.WriteFile(singleFacultyIn, []byte("Roll,Name,Email,CGPA,Dr. Rao\nR001,Asha,asha@uni.edu,9.1,1\n"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"allocate"}, wantErr: errHelp},
		{name: "no output file", args: []string{"allocate", "-in", in}, wantErr: errHelp},
		{name: "no input file", args: []string{"allocate", "-out", out}, wantErr: errHelp},
		{name: "no faculty columns", args: []string{"allocate", "-in", noFacultyIn, "-out", out},
			wantErrStr: "the first columns must be [Roll Name Email CGPA] followed by at least one faculty column"},
		{name: "single faculty column", args: []string{"allocate", "-in", singleFacultyIn, "-out", out}},
		{name: "allocate ok", args: []string{"allocate", "-in", in, "-out", out, "-stats", stats}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}

	wantOut := "Roll,Name,Email,CGPA,Allocated\n" +
		"R001,Asha,asha@uni.edu,9.1,Dr. Rao\n" +
		"R002,Vikram,vikram@uni.edu,8.7,Dr. Rao\n" +
		"R003,Neha,neha@uni.edu,8.9,Dr. Iyer\n"
	if got, err := ioutil.ReadFile(out); err != nil {
		t.Errorf("ReadFile() failed: %v", err)
	} else if string(got) != wantOut {
		t.Errorf("allocation table = %v; want %v", string(got), wantOut)
	}

	wantStats := "Fac,Count Pref 1,Count Pref 2\n" +
		"Dr. Rao,2,1\n" +
		"Dr. Iyer,1,2\n"
	if got, err := ioutil.ReadFile(stats); err != nil {
		t.Errorf("ReadFile() failed: %v", err)
	} else if string(got) != wantStats {
		t.Errorf("statistics table = %v; want %v", string(got), wantStats)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	migrateRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_hashPassword(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "empty password", args: []string{"hashpw"}, wantErr: errHelp},
		{name: "hash ok", args: []string{"hashpw"}, extra: extra{pwd: "s3cr3t"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
