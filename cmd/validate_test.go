package cmd

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/will-rowe/fauxseq/src/validate"
)

// runValidate exits the process on failure, so the failing case is run in a child test binary
const validateChildEnv = "FAUXSEQ_VALIDATE_CHILD"

func TestValidateMissingCountExits(t *testing.T) {
	if os.Getenv(validateChildEnv) == "1" {
		runValidate(os.Getenv("FAUXSEQ_VALIDATE_INPUT"), os.Getenv("FAUXSEQ_VALIDATE_OUTDIR"))
		return
	}
	dir := t.TempDir()
	input := filepath.Join(dir, "no_count.tsv")
	if err := os.WriteFile(input, []byte("gene_idx\tcell_idx\n0\t0\n1\t1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")
	child := exec.Command(os.Args[0], "-test.run=^TestValidateMissingCountExits$")
	child.Env = append(os.Environ(),
		validateChildEnv+"=1",
		"FAUXSEQ_VALIDATE_INPUT="+input,
		"FAUXSEQ_VALIDATE_OUTDIR="+outDir,
	)
	out, err := child.CombinedOutput()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("validate should exit with an error status, got %v\n%s", err, out)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("validate exited with status %d, expected 1\n%s", exitErr.ExitCode(), out)
	}
	if !strings.Contains(string(out), "Validation failed:") {
		t.Fatalf("no failure message on stdout:\n%s", out)
	}
	report, err := os.ReadFile(filepath.Join(outDir, validate.ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(report), "ERROR:") {
		t.Fatalf("failure report should start with ERROR:, got %q", report)
	}
	if !strings.Contains(string(report), "count") {
		t.Fatalf("failure report should name the missing column, got %q", report)
	}
}

func TestValidateSuccess(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "matrix.tsv")
	if err := os.WriteFile(input, []byte("gene_idx\tcell_idx\tcount\n0\t0\t3\n1\t0\t0\n2\t1\t\n"), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")
	runValidate(input, outDir)
	if _, err := os.Stat(filepath.Join(outDir, validate.MatrixFile)); err != nil {
		t.Fatalf("validated matrix not written: %v", err)
	}
	report, err := os.ReadFile(filepath.Join(outDir, validate.ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(report), "Input Validation Report") {
		t.Fatalf("unexpected report: %q", report)
	}
	if !strings.Contains(string(report), "Non-zero entries: 1") {
		t.Fatalf("only one positive count should survive: %q", report)
	}
}
