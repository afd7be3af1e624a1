package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/VatsalaGupta/FacultyAllocation/core"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf *core.Config
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  allocate -in students.csv -out allocations.csv [-stats statistics.csv] - run the allocation pipeline on a CSV sheet")
	fmt.Println("  migrate COMMAND [ARGS] - run a database migration command (up, down, status, ...)")
	fmt.Println("  hashpw - prompt for the staff password and print its hash")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	allocateCmd := flag.NewFlagSet("allocate", flag.ExitOnError)
	allocateIn := allocateCmd.String("in", "", "The student sheet to allocate (CSV).")
	allocateOut := allocateCmd.String("out", "", "Where to write the allocation table (CSV).")
	allocateStats := allocateCmd.String("stats", "", "Where to write the preference statistics table (CSV). Optional.")

	switch args[1] {
	case "allocate":
		if err := allocateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *allocateIn == "" || *allocateOut == "" {
			allocateCmd.Usage()
			return errHelp
		}
		return cli.allocate(*allocateIn, *allocateOut, *allocateStats)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "hashpw":
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.hashPassword(pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}
