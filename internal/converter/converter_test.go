package converter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/torg12/internal/config"
	"github.com/ginjaninja78/torg12/internal/testutil"
	"github.com/ginjaninja78/torg12/internal/torg12"
	"github.com/ginjaninja78/torg12/pkg/utils"
)

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "in")
	cfg.OutputDir = filepath.Join(root, "out")
	cfg.InputArchiveDir = filepath.Join(root, "in_arc")
	cfg.OutputArchiveDir = filepath.Join(root, "out_arc")
	cfg.OutputNameFormat = "{original}_{number}"
	return cfg
}

func TestRunValidInvoice(t *testing.T) {
	cfg := testConfig(t)
	input := testutil.WriteXLSX(t, cfg.InputDir, "supplier.xlsx", testutil.InvoiceRows("42/1", "15.03.2017",
		testutil.Item("1", "Товар А", "A-1", "2", "100", "118", "18"),
	))

	result := New(input, cfg, nil).Run()

	if !result.Success || result.Error != nil {
		t.Fatalf("Run() = %+v", result)
	}
	if !result.Stats.Valid || result.Stats.Rows != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if want := filepath.Join(cfg.OutputDir, "supplier_42_1.json"); result.OutputFile != want {
		t.Errorf("OutputFile = %q, want %q", result.OutputFile, want)
	}

	data, err := os.ReadFile(result.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	var view map[string]any
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if view["number"] != "42/1" {
		t.Errorf("report number = %v", view["number"])
	}

	if utils.FileExists(input) {
		t.Error("valid input should be archived")
	}
	if result.ArchivePath != filepath.Join(cfg.InputArchiveDir, "supplier.xlsx") {
		t.Errorf("ArchivePath = %q", result.ArchivePath)
	}
	if !utils.FileExists(filepath.Join(cfg.OutputArchiveDir, "supplier_42_1.json")) {
		t.Error("report should be copied to the archive")
	}
	if issues := result.Issues(); len(issues) != 0 {
		t.Errorf("Issues() = %v", issues)
	}
}

func TestRunInvalidInvoiceStaysInPlace(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputFormat = "xml"
	input := testutil.WriteXLSX(t, cfg.InputDir, "bad.xlsx", testutil.InvoiceRows("", "15.03.2017",
		testutil.Item("1", "Товар А", "", "2", "100", "118", "18"),
	))

	result := New(input, cfg, nil).Run()

	if !result.Success {
		t.Fatalf("Run() error = %v", result.Error)
	}
	if result.Stats.Valid || result.Stats.Errors != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if filepath.Base(result.OutputFile) != "bad_unknown.xml" {
		t.Errorf("OutputFile = %q", result.OutputFile)
	}
	if !utils.FileExists(input) {
		t.Error("invalid input should not be archived")
	}

	issues := result.Issues()
	if len(issues) != 2 {
		t.Fatalf("Issues() = %+v", issues)
	}
	if issues[0].Code != torg12.CodeInvoiceNumber || issues[0].RowNumber != 0 {
		t.Errorf("first issue = %+v", issues[0])
	}
	if issues[1].Code != torg12.CodeCode || issues[1].RowNumber != 1 {
		t.Errorf("second issue = %+v", issues[1])
	}
}

func TestRunStructuralFailure(t *testing.T) {
	cfg := testConfig(t)
	input := testutil.WriteXLSX(t, cfg.InputDir, "noise.xlsx", [][]string{{"просто", "таблица"}, {"1", "2"}})

	result := New(input, cfg, nil).Run()

	if result.Success || !errors.Is(result.Error, torg12.ErrStructure) {
		t.Fatalf("Run() = %+v", result)
	}
	if result.ErrorType() != "structure" {
		t.Errorf("ErrorType() = %q", result.ErrorType())
	}
	issues := result.Issues()
	if len(issues) != 1 || issues[0].Level != "failure" {
		t.Errorf("Issues() = %+v", issues)
	}
	if !utils.FileExists(input) {
		t.Error("failed input must stay in place")
	}
}

func TestRunDryRunWithProfile(t *testing.T) {
	cfg := testConfig(t)
	input := testutil.WriteXLSX(t, cfg.InputDir, "romashka_01.xlsx", testutil.InvoiceRows("7", "15.03.2017",
		testutil.Item("1", "Товар А", "A-1", "1", "100", "120", "20"),
	))
	profiles := []*config.SupplierProfile{{
		Name:                 "Ромашка",
		Code:                 "romashka",
		FileMatchingPatterns: []string{"romashka_*.xlsx"},
		TaxRates:             []int{0, 20},
	}}

	result := New(input, cfg, profiles, WithDryRun(true)).Run()

	if !result.Success || result.Profile != "romashka" {
		t.Fatalf("Run() = %+v", result)
	}
	if !result.Stats.Valid {
		t.Errorf("20%% should be accepted by the profile: %+v", result.Issues())
	}
	if result.OutputFile != "" || !utils.FileExists(input) {
		t.Error("dry run must not write or archive")
	}
	if entries, _ := os.ReadDir(cfg.OutputDir); len(entries) != 0 {
		t.Errorf("output dir has %d entries", len(entries))
	}
}

func TestRunUnreadable(t *testing.T) {
	cfg := testConfig(t)
	result := New(filepath.Join(cfg.InputDir, "absent.xls"), cfg, nil).Run()
	if result.ErrorType() != "unreadable" {
		t.Fatalf("ErrorType() = %q, error = %v", result.ErrorType(), result.Error)
	}
	if !strings.Contains(result.Error.Error(), "absent.xls") {
		t.Errorf("error should name the file: %v", result.Error)
	}
}
