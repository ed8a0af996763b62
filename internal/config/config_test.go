package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ginjaninja78/torg12/internal/torg12"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMainConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}
	if cfg.OutputFormat != "json" || cfg.MaxConcurrency != 4 || cfg.Server.Addr != ":8083" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if !slices.Equal(cfg.Parser.TaxRates, []int{0, 10, 18}) {
		t.Errorf("TaxRates = %v", cfg.Parser.TaxRates)
	}
	if cfg.Parser.DefaultTaxRate == nil || *cfg.Parser.DefaultTaxRate != 18 {
		t.Errorf("DefaultTaxRate = %v, want 18", cfg.Parser.DefaultTaxRate)
	}
	if !cfg.ContinueOnError || !cfg.ArchiveOnSuccess {
		t.Error("boolean defaults not applied")
	}
}

func TestLoadMainConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "torg12.yaml")
	writeFile(t, path, `
output_format: xml
max_concurrency: 2
continue_on_error: false
tax_rates: [0, 10, 20]
default_tax_rate: null
continue_on_structural_error: true
server:
  addr: ":9000"
`)

	cfg, err := LoadMainConfig(path)
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}
	if cfg.OutputFormat != "xml" || cfg.MaxConcurrency != 2 || cfg.ContinueOnError {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !slices.Equal(cfg.Parser.TaxRates, []int{0, 10, 20}) {
		t.Errorf("TaxRates = %v", cfg.Parser.TaxRates)
	}
	if cfg.Parser.DefaultTaxRate != nil {
		t.Errorf("DefaultTaxRate = %d, want nil", *cfg.Parser.DefaultTaxRate)
	}
	if !cfg.Parser.ContinueOnStructuralError {
		t.Error("continue_on_structural_error not applied")
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.MaxUploadBytes != 20<<20 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if len(cfg.Parser.Vocabulary.Columns) == 0 {
		t.Error("default vocabulary lost")
	}
}

func TestLoadMainConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown output format", "output_format: pdf\n"},
		{"negative tax rate", "tax_rates: [-1]\n"},
		{"empty tax rates", "tax_rates: []\n"},
		{"bad pattern", `
vocabulary:
  document_number: {labels: ["номер документа"], value_offset: 1}
  document_date: {labels: ["дата составления"], value_offset: 1}
  footer: ["всего по накладной"]
  columns:
    - {attribute: num, synonyms: ["№"]}
    - {attribute: sum_with_tax, pattern: "("}
`},
		{"matcher without synonyms or pattern", `
vocabulary:
  document_number: {labels: ["номер документа"], value_offset: 1}
  document_date: {labels: ["дата составления"], value_offset: 1}
  footer: ["всего по накладной"]
  columns:
    - {attribute: num}
`},
		{"malformed yaml", "tax_rates: [0, 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "torg12.yaml")
			writeFile(t, path, tt.content)
			if _, err := LoadMainConfig(path); err == nil {
				t.Error("LoadMainConfig() succeeded, want error")
			}
		})
	}
}

func TestProfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "romashka.yaml"), `
name: ООО Ромашка
code: romashka
file_matching_patterns: ["romashka_*.xls", "romashka_*.xlsx"]
tax_rates: [0, 20]
extra_synonyms:
  code: ["код номенклатуры"]
  sum_with_tax: ["ignored"]
extra_footer: ["итого"]
`)
	writeFile(t, filepath.Join(dir, "alfa.yml"), `
name: Альфа
code: alfa
file_matching_patterns: ["alfa*"]
`)

	profiles, err := LoadProfiles(dir)
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}
	if len(profiles) != 2 || profiles[0].Code != "alfa" {
		t.Fatalf("profiles = %v", profiles)
	}

	p := SelectProfile(profiles, "/in/romashka_0315.xlsx")
	if p == nil || p.Code != "romashka" {
		t.Fatalf("SelectProfile() = %v, want romashka", p)
	}
	if SelectProfile(profiles, "other.xlsx") != nil {
		t.Error("unexpected profile for other.xlsx")
	}

	base := torg12.DefaultConfig()
	cfg := p.Apply(base)
	if !slices.Equal(cfg.TaxRates, []int{0, 20}) {
		t.Errorf("TaxRates = %v", cfg.TaxRates)
	}
	if !slices.Contains(cfg.Vocabulary.Footer, "итого") {
		t.Errorf("Footer = %v", cfg.Vocabulary.Footer)
	}
	for i, m := range cfg.Vocabulary.Columns {
		switch m.Attribute {
		case torg12.AttrCode:
			if !slices.Contains(m.Synonyms, "код номенклатуры") {
				t.Errorf("code synonyms = %v", m.Synonyms)
			}
			if len(base.Vocabulary.Columns[i].Synonyms) == len(m.Synonyms) {
				t.Error("base vocabulary was modified or not extended")
			}
		case torg12.AttrSumWithTax:
			if len(m.Synonyms) != 0 {
				t.Errorf("pattern attribute got synonyms %v", m.Synonyms)
			}
		}
	}
	if slices.Contains(base.Vocabulary.Footer, "итого") {
		t.Error("base footer was modified")
	}
	if _, err := torg12.New(cfg); err != nil {
		t.Errorf("profile config does not compile: %v", err)
	}
}

func TestLoadProfilesRejectsDuplicatesAndInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "name: A\ncode: x\nfile_matching_patterns: [\"a*\"]\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "name: B\ncode: x\nfile_matching_patterns: [\"b*\"]\n")
	if _, err := LoadProfiles(dir); err == nil || !strings.Contains(err.Error(), "defined in both") {
		t.Errorf("error = %v, want duplicate code error", err)
	}

	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "c.yaml"), "name: C\ncode: c\n")
	if _, err := LoadProfiles(dir); err == nil {
		t.Error("profile without patterns accepted")
	}

	profiles, err := LoadProfiles(filepath.Join(t.TempDir(), "none"))
	if err != nil || profiles != nil {
		t.Errorf("missing dir: profiles = %v, err = %v", profiles, err)
	}
}

func TestShippedExamples(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join("..", "..", "configs", "torg12.example.yaml"))
	if err != nil {
		t.Fatalf("example config: %v", err)
	}
	if !cfg.ArchiveByDate || !slices.Equal(cfg.Parser.TaxRates, []int{0, 10, 18, 20}) {
		t.Errorf("example config = %+v", cfg)
	}
	if len(cfg.Parser.Vocabulary.Columns) == 0 {
		t.Error("default vocabulary lost")
	}

	profiles, err := LoadProfiles(filepath.Join("..", "..", "configs", "profiles"))
	if err != nil {
		t.Fatalf("example profiles: %v", err)
	}
	p := ProfileByCode(profiles, "romashka")
	if p == nil || SelectProfile(profiles, "romashka_0101.xls") != p {
		t.Fatalf("profiles = %v", profiles)
	}
	if _, err := torg12.New(p.Apply(cfg.Parser)); err != nil {
		t.Errorf("example profile does not compile: %v", err)
	}
}
