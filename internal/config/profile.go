package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/torg12/internal/torg12"
)

// =============================================================================
// SUPPLIER PROFILE STRUCTURE
// =============================================================================

// SupplierProfile adjusts recognition for one supplier. It is selected by
// matching the input file name against FileMatchingPatterns.
type SupplierProfile struct {
	// Name is the human-readable supplier name, used in logs.
	Name string `yaml:"name" validate:"required"`

	// Code is a short identifier; profiles are keyed and ordered by it.
	Code string `yaml:"code" validate:"required"`

	// FileMatchingPatterns are glob patterns matched against the base file
	// name, e.g. "romashka_*.xls".
	FileMatchingPatterns []string `yaml:"file_matching_patterns" validate:"required,min=1"`

	// TaxRates replaces the global whitelist when set.
	TaxRates []int `yaml:"tax_rates,omitempty" validate:"omitempty,dive,gte=0,lte=100"`

	// DefaultTaxRate replaces the global default when set.
	DefaultTaxRate *int `yaml:"default_tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`

	// ExtraSynonyms adds header wordings per attribute. Attributes that use
	// a pattern are not extended.
	ExtraSynonyms map[torg12.Attribute][]string `yaml:"extra_synonyms,omitempty"`

	// ExtraFooter adds labels that end the item table.
	ExtraFooter []string `yaml:"extra_footer,omitempty"`
}

// Matches reports whether the profile applies to fileName.
func (p *SupplierProfile) Matches(fileName string) bool {
	base := filepath.Base(fileName)
	for _, pattern := range p.FileMatchingPatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// Apply returns a copy of base with the profile's adjustments. base is not
// modified.
func (p *SupplierProfile) Apply(base torg12.Config) torg12.Config {
	cfg := base
	if len(p.TaxRates) > 0 {
		cfg.TaxRates = append([]int(nil), p.TaxRates...)
	}
	if p.DefaultTaxRate != nil {
		cfg.DefaultTaxRate = torg12.IntPtr(*p.DefaultTaxRate)
	}

	cfg.Vocabulary.Columns = make([]torg12.ColumnMatcher, len(base.Vocabulary.Columns))
	for i, m := range base.Vocabulary.Columns {
		m.Synonyms = append([]string(nil), m.Synonyms...)
		if extra := p.ExtraSynonyms[m.Attribute]; len(extra) > 0 && m.Pattern == "" {
			m.Synonyms = append(m.Synonyms, extra...)
		}
		cfg.Vocabulary.Columns[i] = m
	}
	if len(p.ExtraFooter) > 0 {
		cfg.Vocabulary.Footer = append(append([]string(nil), base.Vocabulary.Footer...), p.ExtraFooter...)
	}
	return cfg
}

// =============================================================================
// LOADING
// =============================================================================

// LoadProfiles loads all supplier profiles from a directory, ordered by code.
// An empty or missing directory yields no profiles.
func LoadProfiles(profilesDir string) ([]*SupplierProfile, error) {
	if profilesDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(profilesDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)

	seen := make(map[string]string)
	var profiles []*SupplierProfile
	for _, file := range files {
		profile, err := loadProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		if prev, dup := seen[profile.Code]; dup {
			return nil, fmt.Errorf("profile code %q defined in both %s and %s", profile.Code, prev, file)
		}
		seen[profile.Code] = file
		profiles = append(profiles, profile)
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Code < profiles[j].Code })
	return profiles, nil
}

// loadProfile loads a single supplier profile file.
func loadProfile(filePath string) (*SupplierProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile SupplierProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if err := validate.Struct(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SelectProfile returns the first profile matching fileName, or nil.
func SelectProfile(profiles []*SupplierProfile, fileName string) *SupplierProfile {
	for _, p := range profiles {
		if p.Matches(fileName) {
			return p
		}
	}
	return nil
}

// ProfileByCode returns the profile with the given code, or nil.
func ProfileByCode(profiles []*SupplierProfile, code string) *SupplierProfile {
	for _, p := range profiles {
		if p.Code == code {
			return p
		}
	}
	return nil
}
