/*
Mxc compiles the expression bodies of a mixfix grammar unit.

It reads in an MXU unit file, which declares the classes, methods, fields, and
mixfix operators that are available, along with the bodies to compile. Each
body is parsed as one expression of its declared type using every operator in
the unit. Problems are printed to stderr and, if requested, written to a binary
report file that can be printed later with --show-report.

Usage:

	mxc [flags] UNIT_FILE
	mxc [flags] -i UNIT_FILE
	mxc --show-report REPORT_FILE

The flags are:

	-v, --version
		Give the current version of mixfix and then exit.

	-V, --verbose
		Log each body as it is compiled. If not given, will default to the
		value of environment variable MIXFIX_VERBOSE.

	-r, --report FILE
		Write every diagnostic to FILE in the binary report format, in
		addition to printing them.

	--show-report FILE
		Print the diagnostics in a report written by a previous run and then
		exit. No unit file is read.

	-i, --interactive
		Instead of compiling the bodies of the unit, start a shell that parses
		each line of input as an expression using the operators of the unit.

	-t, --type NAME
		The type of expression the interactive shell parses at start. If not
		given, will default to the value of environment variable MIXFIX_TYPE,
		and if that is not given, will default to "int".

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading shell input even if launched in a
		tty with stdin and stdout.

	--table NAME
		Print the operators of the unit that produce type NAME, loosest
		binding first, and then exit.
*/
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/dekarrin/mixfix"
	"github.com/dekarrin/mixfix/internal/diag"
	"github.com/dekarrin/mixfix/internal/mxu"
	"github.com/dekarrin/mixfix/internal/version"
	"github.com/spf13/pflag"
)

const (
	EnvVerbose = "MIXFIX_VERBOSE"
	EnvType    = "MIXFIX_TYPE"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates that the program was invoked incorrectly.
	ExitUsageError

	// ExitLoadError indicates that the unit or report could not be read.
	ExitLoadError

	// ExitCompileError indicates that at least one body did not compile.
	ExitCompileError
)

const (
	defaultType  = "int"
	messageWidth = 80
)

var (
	returnCode = ExitSuccess

	flagVersion     = pflag.BoolP("version", "v", false, "Give the current version of mixfix and then exit.")
	flagVerbose     = pflag.BoolP("verbose", "V", false, "Log each body as it is compiled.")
	flagReport      = pflag.StringP("report", "r", "", "Write diagnostics to the given report file.")
	flagShowReport  = pflag.String("show-report", "", "Print the diagnostics in the given report file and then exit.")
	flagInteractive = pflag.BoolP("interactive", "i", false, "Start an expression shell instead of compiling bodies.")
	flagType        = pflag.StringP("type", "t", "", "Type of expression the shell parses.")
	flagDirect      = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible.")
	flagTable       = pflag.String("table", "", "Print the operators that produce the given type and then exit.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (report format %s)\n", version.Current, version.ReportFormat)
		return
	}

	args := pflag.Args()

	if *flagShowReport != "" {
		if len(args) > 0 {
			fmt.Fprintf(os.Stderr, "--show-report does not take a unit file\nDo -h for help.\n")
			returnCode = ExitUsageError
			return
		}
		returnCode = showReport(*flagShowReport)
		return
	}

	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "No unit file given\nDo -h for help.\n")
		returnCode = ExitUsageError
		return
	} else if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		returnCode = ExitUsageError
		return
	}

	verbose := *flagVerbose
	if !pflag.Lookup("verbose").Changed {
		if envVal := os.Getenv(EnvVerbose); envVal != "" {
			var err error
			verbose, err = strconv.ParseBool(envVal)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %q is not a valid boolean\n", EnvVerbose, envVal)
				returnCode = ExitUsageError
				return
			}
		}
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	unit, err := mxu.Load(args[0])
	if err != nil {
		logger.Printf("ERROR %s", err.Error())
		returnCode = ExitLoadError
		return
	}
	if verbose {
		logger.Printf("DEBUG loaded %s from %d file(s)", args[0], len(unit.Files))
	}

	c := mixfix.NewCompiler(unit.Model, logger, verbose)

	if *flagTable != "" {
		t, err := unit.Model.TypeByName(*flagTable)
		if err != nil {
			fmt.Fprintf(os.Stderr, "--table: %s\n", err.Error())
			returnCode = ExitUsageError
			return
		}
		fmt.Println(c.DumpTable(t, messageWidth))
		return
	}

	if *flagInteractive {
		returnCode = runShell(c)
		return
	}

	var diags diag.List
	c.CompileAll(unit.Bodies, &diags)

	sorted := diags.Sorted()
	for _, d := range sorted {
		fmt.Fprintf(os.Stderr, "%s\n", d.FullMessage(messageWidth))
	}

	if *flagReport != "" {
		if err := writeReport(*flagReport, sorted); err != nil {
			logger.Printf("ERROR %s", err.Error())
			returnCode = ExitLoadError
			return
		}
		logger.Printf("INFO  wrote %d diagnostic(s) to %s", len(sorted), *flagReport)
	}

	if len(sorted) > 0 {
		returnCode = ExitCompileError
	}
}

func runShell(c *mixfix.Compiler) int {
	typeName := defaultType
	if envVal := os.Getenv(EnvType); envVal != "" {
		typeName = envVal
	}
	if pflag.Lookup("type").Changed {
		typeName = *flagType
	}

	sh, err := mixfix.NewShell(c, os.Stdin, os.Stdout, typeName, *flagDirect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitUsageError
	}
	defer sh.Close()

	if err := sh.RunUntilQuit(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitLoadError
	}
	return ExitSuccess
}

func writeReport(path string, ds []diag.Diagnostic) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := diag.WriteReport(f, ds); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

func showReport(path string) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitLoadError
	}
	defer f.Close()

	rep, err := diag.ReadReport(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s: %s\n", path, err.Error())
		return ExitLoadError
	}

	for _, d := range rep.Diagnostics {
		fmt.Printf("%s\n", d.FullMessage(messageWidth))
	}
	if len(rep.Diagnostics) > 0 {
		return ExitCompileError
	}
	return ExitSuccess
}
