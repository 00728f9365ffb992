package cmd

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so runs do not leak into each other
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		if err := f.Value.Set(f.DefValue); err != nil {
			t.Fatalf("Failed to reset --%s: %v", f.Name, err)
		}
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	analyzeCmd.Flags().VisitAll(reset)
}

func writeSamples(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	var files []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644); err != nil {
			t.Fatalf("Failed to write sample: %v", err)
		}
		files = append(files, path)
	}
	return files
}

func TestAnalyzeCommand(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	files := writeSamples(t, dir, "alpha.png", "beta.png", "gamma.png")

	csvPath := filepath.Join(dir, "out", "history.csv")
	if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
		t.Fatal(err)
	}
	reportPath := filepath.Join(dir, "report.html")
	chartDir := filepath.Join(dir, "charts")

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"analyze", "--seed", "42", "--csv", csvPath, "--report", reportPath, "--charts", chartDir}, files...))
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatalf("Unexpected error: %v\n%s", err, errOut.String())
	}

	for _, name := range []string{"alpha.png", "beta.png", "gamma.png"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("Expected %s in table output:\n%s", name, out.String())
		}
	}

	csv, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("Expected CSV file: %v", err)
	}
	if lines := strings.Split(string(csv), "\n"); len(lines) != 4 {
		t.Errorf("Expected header plus 3 rows, got %d lines", len(lines))
	}

	report, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("Expected report file: %v", err)
	}
	if strings.Count(string(report), "<tr><td>") != 3 || !strings.Contains(string(report), "window.print()") {
		t.Error("Expected a printable report with 3 rows")
	}

	for _, name := range []string{"composition.png", "accuracy.png"} {
		f, err := os.Open(filepath.Join(chartDir, name))
		if err != nil {
			t.Fatalf("Expected %s: %v", name, err)
		}
		_, err = png.Decode(f)
		f.Close()
		if err != nil {
			t.Errorf("%s: invalid png: %v", name, err)
		}
	}
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	resetFlags(t)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"analyze", filepath.Join(t.TempDir(), "nope.png")})
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestAnalyzeCommand_ChartWidthFromEnv(t *testing.T) {
	resetFlags(t)
	t.Setenv("MPSIM_CHART_WIDTH", "1234")
	t.Setenv("MPSIM_CHART_HEIGHT", "321")

	dir := t.TempDir()
	files := writeSamples(t, dir, "a.png", "b.png", "c.png")
	chartDir := filepath.Join(dir, "charts")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"analyze", "--charts", chartDir}, files...))
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, name := range []string{"composition.png", "accuracy.png"} {
		f, err := os.Open(filepath.Join(chartDir, name))
		if err != nil {
			t.Fatalf("Expected %s: %v", name, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s: invalid png: %v", name, err)
		}
		if b := img.Bounds(); b.Dx() != 1234 || b.Dy() != 321 {
			t.Errorf("%s: expected 1234x321 from the environment, got %dx%d", name, b.Dx(), b.Dy())
		}
	}
}

func TestAnalyzeCommand_VerboseLogsEveryRecord(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	files := writeSamples(t, dir, "f1.png", "f2.png", "f3.png", "f4.png", "f5.png")

	var errOut bytes.Buffer
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"analyze", "--verbose"}, files...))
	defer rootCmd.SetArgs(nil)
	defer resetFlags(t)

	if err := Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	logs := errOut.String()
	if got := strings.Count(logs, `"event_type":"record_appended"`); got != len(files) {
		t.Errorf("Expected %d record_appended lines, got %d:\n%s", len(files), got, logs)
	}
	if got := strings.Count(logs, `"event_type":"batch_completed"`); got != 1 {
		t.Errorf("Expected one batch_completed line, got %d", got)
	}
}

func TestAnalyzeCommand_UnreadableFileIsSkipped(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	files := writeSamples(t, dir, "ok.png")
	sub := filepath.Join(dir, "folder.png")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"analyze"}, append(files, sub)...))
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "ok.png") {
		t.Errorf("Expected the readable file in the table, got:\n%s", out.String())
	}
	logs := errOut.String()
	if !strings.Contains(logs, "Skipped unreadable file") || !strings.Contains(logs, `"file":"folder.png"`) {
		t.Errorf("Expected a warning for the skipped file, got:\n%s", logs)
	}
	if !strings.Contains(logs, "processing: could not read folder.png") {
		t.Errorf("Expected a processing error in the warning, got:\n%s", logs)
	}
}
