// Package misc holds the logging, error and file helpers shared by the fauxseq subcommands.
package misc

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
)

// DirPerm is the permission used for every directory fauxseq creates
const DirPerm = 0755

// ErrorCheck is a function to log an error and terminate the run
func ErrorCheck(err error) {
	if err != nil {
		log.Fatalf("fauxseq terminated\n\nERROR --> %v\n\n", err)
	}
}

// LogFlags is a function to log the value of every flag of a subcommand, marking those left at their default
func LogFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Changed {
			log.Printf("\t--%v: %v", flag.Name, flag.Value)
		} else {
			log.Printf("\t--%v: %v (default)", flag.Name, flag.Value)
		}
	})
}

// StartLogging is a function to open a log file for appending, creating its directory if needed
func StartLogging(logFile string) *os.File {
	if logDir := filepath.Dir(logFile); logDir != "." {
		if err := EnsureDir(logDir); err != nil {
			log.Fatalf("can't create directory for log file: %v", err)
		}
	}
	logFH, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		log.Fatal(err)
	}
	return logFH
}

// EnsureDir creates a directory (and any parents) if it is not already there
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("no directory specified")
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, DirPerm); err != nil {
			return fmt.Errorf("can't create directory %v: %w", dir, err)
		}
	}
	return nil
}

// CheckDir is a function to check that a path exists and is a directory
func CheckDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("no directory specified")
	}
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("directory does not exist: %v", dir)
	case err != nil:
		return fmt.Errorf("can't access directory %v: %w", dir, err)
	case !info.IsDir():
		return fmt.Errorf("not a directory: %v", dir)
	}
	return nil
}

// CheckFile is a function to check that a path exists and is a regular file
func CheckFile(file string) error {
	info, err := os.Stat(file)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("file does not exist: %v", file)
	case err != nil:
		return fmt.Errorf("can't access file %v: %w", file, err)
	case info.IsDir():
		return fmt.Errorf("expected a file, got a directory: %v", file)
	}
	return nil
}

// CheckExt is a function to check a file's extension against a list, ignoring a trailing .gz
func CheckExt(file string, exts []string) error {
	ext := strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(file, ".gz")), ".")
	for _, want := range exts {
		if ext != "" && ext == want {
			return nil
		}
	}
	return fmt.Errorf("file does not have a recognised extension (%v): %v", strings.Join(exts, ", "), file)
}

// PrintMemUsage returns a one line summary of heap and OS memory use and the number of GC cycles
func PrintMemUsage() string {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	const mb = 1 << 20
	return fmt.Sprintf("memory: heap %dMb, OS %dMb, GC cycles %d", stats.HeapAlloc/mb, stats.Sys/mb, stats.NumGC)
}
