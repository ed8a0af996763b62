// =============================================================================
// TORG12 Parser - Recognition Configuration
// =============================================================================
//
// The vocabulary below is data, not code: every header wording the parser
// understands lives here and can be replaced from the YAML config file. The
// scanning algorithms only see attribute tags and matchers.
//
// COLUMN MATCHERS:
//   Matchers are evaluated in list order for each cell. A cell is claimed by
//   the first attribute that is still unmapped and whose matcher accepts the
//   cell's normalized text. A matcher carries either a synonym list (exact
//   match after header normalization) or a regular expression (matched
//   case-insensitively against the normalized text).
//
// CUSTOMIZATION:
//   - Add a new supplier wording by appending it to the synonym list
//   - Reordering the list changes which attribute wins an ambiguous cell
//
// =============================================================================

package torg12

// Attribute is the canonical name of a line item column.
type Attribute string

// Canonical column attributes.
const (
	AttrNum             Attribute = "num"
	AttrName            Attribute = "name"
	AttrCode            Attribute = "code"
	AttrCnt             Attribute = "cnt"
	AttrCntPlace        Attribute = "cnt_place"
	AttrPriceWithoutTax Attribute = "price_without_tax"
	AttrPriceWithTax    Attribute = "price_with_tax"
	AttrSumWithTax      Attribute = "sum_with_tax"
	AttrTaxRate         Attribute = "tax_rate"
)

// Config holds everything a Parser needs besides the workbook.
type Config struct {
	// TaxRates is the whitelist of accepted VAT percentages.
	TaxRates []int `yaml:"tax_rates" json:"tax_rates" validate:"required,min=1,dive,gte=0,lte=100"`

	// DefaultTaxRate replaces rates outside the whitelist. Nil disables
	// substitution and turns such rates into errors.
	DefaultTaxRate *int `yaml:"default_tax_rate" json:"default_tax_rate" validate:"omitempty,gte=0,lte=100"`

	// ContinueOnStructuralError skips sheets with missing required columns
	// instead of failing the whole parse.
	ContinueOnStructuralError bool `yaml:"continue_on_structural_error" json:"continue_on_structural_error"`

	Vocabulary Vocabulary `yaml:"vocabulary" json:"vocabulary"`
}

// Vocabulary lists the texts that identify header fields, columns and the
// end of the item table.
type Vocabulary struct {
	DocumentNumber HeaderLabel     `yaml:"document_number" json:"document_number"`
	DocumentDate   HeaderLabel     `yaml:"document_date" json:"document_date"`
	Columns        []ColumnMatcher `yaml:"columns" json:"columns" validate:"required,min=1,dive"`

	// CntExclusion marks a quantity header as the parent of a composite
	// column when found directly below it.
	CntExclusion []string `yaml:"cnt_exclusion" json:"cnt_exclusion"`

	// Footer labels end the item table.
	Footer []string `yaml:"footer" json:"footer" validate:"required,min=1"`

	// NoTaxTokens are tax cell texts meaning a zero rate.
	NoTaxTokens []string `yaml:"no_tax_tokens" json:"no_tax_tokens"`
}

// HeaderLabel describes a document field printed as a label with the value
// ValueOffset rows below it.
type HeaderLabel struct {
	Labels      []string `yaml:"labels" json:"labels" validate:"required,min=1"`
	ValueOffset int      `yaml:"value_offset" json:"value_offset" validate:"gte=0"`
}

// ColumnMatcher binds an attribute to the header texts that identify it.
type ColumnMatcher struct {
	Attribute Attribute `yaml:"attribute" json:"attribute" validate:"required"`
	Synonyms  []string  `yaml:"synonyms,omitempty" json:"synonyms,omitempty" validate:"required_without=Pattern"`
	Pattern   string    `yaml:"pattern,omitempty" json:"pattern,omitempty" validate:"required_without=Synonyms"`
}

// DefaultConfig returns the configuration for the standard TORG-12 form.
func DefaultConfig() Config {
	defaultRate := 18
	return Config{
		TaxRates:       []int{0, 10, 18},
		DefaultTaxRate: &defaultRate,
		Vocabulary:     DefaultVocabulary(),
	}
}

// DefaultVocabulary returns the built-in header wordings.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		DocumentNumber: HeaderLabel{Labels: []string{"номер документа"}, ValueOffset: 1},
		DocumentDate:   HeaderLabel{Labels: []string{"дата составления"}, ValueOffset: 1},
		Columns: []ColumnMatcher{
			{Attribute: AttrNum, Synonyms: []string{"№", "№№", "№ п/п", "номер по порядку"}},
			{Attribute: AttrName, Synonyms: []string{
				"название",
				"наименование",
				"наименование, характеристика, сорт, артикул товара",
			}},
			{Attribute: AttrCode, Synonyms: []string{
				"код",
				"isbn",
				"ean",
				"артикул",
				"артикул поставщика",
				"код товара поставщика",
				"код (артикул)",
				"штрих-код",
			}},
			{Attribute: AttrCnt, Synonyms: []string{
				"кол-во",
				"количество",
				"кол-во экз.",
				"общее кол-во",
				"количество (масса нетто)",
				"коли-чество (масса нетто)",
			}},
			{Attribute: AttrCntPlace, Synonyms: []string{"мест, штук"}},
			{Attribute: AttrPriceWithoutTax, Synonyms: []string{
				"цена",
				"цена без ндс",
				"цена без ндс, руб.",
				"цена без ндс руб.",
				"цена без учета ндс",
				"цена без учета ндс, руб.",
				"цена без учета ндс руб.",
				"цена, руб. коп.",
			}},
			{Attribute: AttrPriceWithTax, Synonyms: []string{
				"цена с ндс, руб.",
				"цена с ндс руб.",
				"цена, руб.",
				"цена руб.",
			}},
			{Attribute: AttrSumWithTax, Pattern: `сумма.*с.*ндс`},
			{Attribute: AttrTaxRate, Synonyms: []string{
				"ндс, %",
				"ндс %",
				"ставка ндс, %",
				"ставка ндс %",
				"ставка ндс",
				"ставка, %",
				"ставка %",
			}},
		},
		CntExclusion: []string{"в одном месте"},
		Footer:       []string{"всего по накладной"},
		NoTaxTokens:  []string{"без ндс"},
	}
}

// IntPtr is a helper for setting DefaultTaxRate.
func IntPtr(v int) *int { return &v }
