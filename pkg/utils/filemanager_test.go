package utils

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverWorkbooks(t *testing.T) {
	in := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.XLS", "notes.txt", "~$a.xlsx", "nested/c.xls"} {
		touch(t, filepath.Join(in, name))
	}
	fm := NewFileManager(in, "", "", "")

	flat, err := fm.DiscoverWorkbooks(false)
	if err != nil {
		t.Fatalf("DiscoverWorkbooks() error = %v", err)
	}
	want := []string{filepath.Join(in, "a.XLS"), filepath.Join(in, "b.xlsx")}
	if !slices.Equal(flat, want) {
		t.Errorf("flat = %v, want %v", flat, want)
	}

	deep, err := fm.DiscoverWorkbooks(true)
	if err != nil {
		t.Fatalf("DiscoverWorkbooks(true) error = %v", err)
	}
	if len(deep) != 3 || deep[2] != filepath.Join(in, "nested", "c.xls") {
		t.Errorf("recursive = %v", deep)
	}
}

func TestDiscoverWorkbooksMissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "absent"), "", "", "")
	if _, err := fm.DiscoverWorkbooks(false); err == nil {
		t.Fatal("expected an error for a missing input directory")
	}
}

func TestArchive(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "in"),
		filepath.Join(root, "out"),
		filepath.Join(root, "in_arc"),
		filepath.Join(root, "out_arc"),
	)
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC) }

	input := filepath.Join(fm.InputDir, "inv.xls")
	output := filepath.Join(fm.OutputDir, "inv.json")
	touch(t, input)
	touch(t, output)

	archived, err := fm.ArchiveInputFile(input)
	if err != nil {
		t.Fatalf("ArchiveInputFile() error = %v", err)
	}
	if want := filepath.Join(fm.InputArchiveDir, "2024", "03", "07", "inv.xls"); archived != want {
		t.Errorf("archived = %q, want %q", archived, want)
	}
	if FileExists(input) {
		t.Error("input should have been moved")
	}

	copied, err := fm.ArchiveOutputFile(output)
	if err != nil {
		t.Fatalf("ArchiveOutputFile() error = %v", err)
	}
	if !FileExists(copied) || !FileExists(output) {
		t.Error("output should be copied and kept")
	}

	fm.ArchiveOnSuccess = false
	touch(t, input)
	if got, _ := fm.ArchiveInputFile(input); got != input || !FileExists(input) {
		t.Error("archiving disabled should leave the file in place")
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	tests := []struct {
		name   string
		format string
		ext    string
		params map[string]string
		check  func(string) bool
	}{
		{
			name:   "original and number",
			format: "{original}_{number}",
			ext:    ".json",
			params: map[string]string{"original": "romashka", "number": "12/А"},
			check:  func(s string) bool { return s == "romashka_12_А.json" },
		},
		{
			name:   "extension kept",
			format: "report.XML",
			ext:    ".xml",
			check:  func(s string) bool { return s == "report.XML" },
		},
		{
			name:   "uuid expanded",
			format: "{uuid}",
			ext:    ".xlsx",
			check:  func(s string) bool { return len(s) == 36+5 && !strings.Contains(s, "{") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateOutputFileName(tt.format, tt.ext, tt.params)
			if !tt.check(got) {
				t.Errorf("GenerateOutputFileName() = %q", got)
			}
		})
	}
}

func TestWriteLogs(t *testing.T) {
	dir := t.TempDir()

	if path, err := WriteErrorLog(nil, dir); err != nil || path != "" {
		t.Fatalf("empty log = %q, %v", path, err)
	}

	path, err := WriteErrorLog([]ErrorLogEntry{
		{Timestamp: time.Now(), FileName: "a.xls", Level: "error", Code: "tax_rate", Message: "bad rate", RowNumber: 4},
	}, dir)
	if err != nil {
		t.Fatalf("WriteErrorLog() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	for _, want := range []string{"Total Issues: 1", "Row:        4", "Code:       tax_rate"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("issue log missing %q", want)
		}
	}

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	path, err = WriteSummaryLog(ProcessingSummary{
		RunID:           "run-1",
		StartTime:       start,
		EndTime:         start.Add(time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "a.xls", InvoiceNumber: "7", Valid: true, Rows: 3}},
		FailedFilesList: []FailedFileInfo{{InputFile: "b.xls", ErrorType: "structure", ErrorMessage: "no columns"}},
	}, dir)
	if err != nil {
		t.Fatalf("WriteSummaryLog() error = %v", err)
	}
	if filepath.Base(path) != "processing_summary_20240102_030405.txt" {
		t.Errorf("summary path = %q", path)
	}
	data, _ = os.ReadFile(path)
	for _, want := range []string{"Run ID:         run-1", "Invoice:      7 (valid)", "Type:  structure"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestCleanOldArchives(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "2020", "old.xls")
	fresh := filepath.Join(dir, "fresh.xls")
	touch(t, old)
	touch(t, fresh)
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	removed, err := CleanOldArchives(dir, 24*time.Hour)
	if err != nil || removed != 1 {
		t.Fatalf("CleanOldArchives() = %d, %v", removed, err)
	}
	if FileExists(old) || !FileExists(fresh) {
		t.Error("wrong file removed")
	}

	if n, err := CleanOldArchives(filepath.Join(dir, "absent"), time.Hour); n != 0 || err != nil {
		t.Errorf("missing dir = %d, %v", n, err)
	}
}
