// =============================================================================
// TORG12 Parser - Column Mapper
// =============================================================================
//
// Finds the line item column headers below the document header block and
// records where each canonical attribute lives.
//
// ALGORITHM:
//   Every cell from the header start row down is normalized and offered to
//   the vocabulary matchers in order. The first still-unmapped attribute that
//   accepts the text claims the cell; later matches for a mapped attribute
//   are ignored. A quantity header whose cell below reads "в одном месте" is
//   the parent of a composite column and claims nothing.
//
// VALIDATION:
//   Required attributes are checked in a fixed order and only the first
//   missing one is reported:
//     num, code, name, cnt|cnt_place, price_without_tax,
//     price_with_tax|sum_with_tax, tax_rate
//
// =============================================================================

package torg12

import (
	"sort"
	"strings"

	"github.com/schollz/closestmatch"

	"github.com/ginjaninja78/torg12/internal/grid"
	"github.com/ginjaninja78/torg12/internal/normalize"
)

// Position is a zero-based cell address.
type Position struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// ColumnMap holds the header cell of each mapped attribute; nil means the
// attribute was not found.
type ColumnMap struct {
	Num             *Position `json:"num,omitempty"`
	Name            *Position `json:"name,omitempty"`
	Code            *Position `json:"code,omitempty"`
	Cnt             *Position `json:"cnt,omitempty"`
	CntPlace        *Position `json:"cnt_place,omitempty"`
	PriceWithoutTax *Position `json:"price_without_tax,omitempty"`
	PriceWithTax    *Position `json:"price_with_tax,omitempty"`
	SumWithTax      *Position `json:"sum_with_tax,omitempty"`
	TaxRate         *Position `json:"tax_rate,omitempty"`
}

// requiredColumns lists the validation order; each group needs one member.
var requiredColumns = [][]Attribute{
	{AttrNum},
	{AttrCode},
	{AttrName},
	{AttrCnt, AttrCntPlace},
	{AttrPriceWithoutTax},
	{AttrPriceWithTax, AttrSumWithTax},
	{AttrTaxRate},
}

func (m *ColumnMap) field(attr Attribute) **Position {
	switch attr {
	case AttrNum:
		return &m.Num
	case AttrName:
		return &m.Name
	case AttrCode:
		return &m.Code
	case AttrCnt:
		return &m.Cnt
	case AttrCntPlace:
		return &m.CntPlace
	case AttrPriceWithoutTax:
		return &m.PriceWithoutTax
	case AttrPriceWithTax:
		return &m.PriceWithTax
	case AttrSumWithTax:
		return &m.SumWithTax
	case AttrTaxRate:
		return &m.TaxRate
	}
	return nil
}

// Get returns the position of attr, or nil when unmapped or unknown.
func (m *ColumnMap) Get(attr Attribute) *Position {
	if f := m.field(attr); f != nil {
		return *f
	}
	return nil
}

// Has reports whether attr was mapped.
func (m *ColumnMap) Has(attr Attribute) bool {
	return m.Get(attr) != nil
}

func (m *ColumnMap) set(attr Attribute, pos Position) {
	if f := m.field(attr); f != nil {
		*f = &pos
	}
}

// lowestRow returns the largest row index among mapped attributes.
func (m *ColumnMap) lowestRow() int {
	lowest := -1
	for _, p := range []*Position{
		m.Num, m.Name, m.Code, m.Cnt, m.CntPlace,
		m.PriceWithoutTax, m.PriceWithTax, m.SumWithTax, m.TaxRate,
	} {
		if p != nil && p.Row > lowest {
			lowest = p.Row
		}
	}
	return lowest
}

// missing returns the first unsatisfied required group, or nil.
func (m *ColumnMap) missing() []Attribute {
	for _, group := range requiredColumns {
		ok := false
		for _, attr := range group {
			ok = ok || m.Has(attr)
		}
		if !ok {
			return group
		}
	}
	return nil
}

// mapColumns scans sheet from startRow and returns the column map and the
// row right below the lowest mapped header cell.
func mapColumns(sheet grid.Sheet, startRow int, v *vocabulary) (*ColumnMap, int, error) {
	cols := &ColumnMap{}
	seen := make(map[string]struct{})
	claimed := make(map[string]struct{})

	lastRow, lastCol := sheet.HighestRow(), sheet.HighestColumn()
	for row := startRow; row <= lastRow; row++ {
		for col := 0; col <= lastCol; col++ {
			text := normalize.Header(sheet.CellValue(col, row))
			if text == "" {
				continue
			}
			seen[text] = struct{}{}

			for _, m := range v.columns {
				if cols.Has(m.attr) || !m.matches(text) {
					continue
				}
				if m.attr == AttrCnt && v.cntExcl.has(normalize.Header(sheet.CellValue(col, row+1))) {
					break
				}
				cols.set(m.attr, Position{Col: col, Row: row})
				claimed[text] = struct{}{}
				break
			}
		}
	}

	if group := cols.missing(); group != nil {
		var unclaimed []string
		for text := range seen {
			if _, ok := claimed[text]; !ok {
				unclaimed = append(unclaimed, text)
			}
		}
		accepted := v.accepted(group...)
		return cols, 0, &StructuralError{
			Sheet:      sheet.Name(),
			Attribute:  joinAttrs(group),
			Accepted:   accepted,
			Suggestion: closestHeader(unclaimed, accepted),
		}
	}
	return cols, cols.lowestRow() + 1, nil
}

// minSuggestionScore is the similarity below which no hint is given.
const minSuggestionScore = 0.3

// closestHeader returns the candidate most similar to any of the accepted
// headers, or "" when none reaches minSuggestionScore. Ties go to the
// lexically smaller candidate.
func closestHeader(candidates, accepted []string) string {
	if len(candidates) == 0 || len(accepted) == 0 {
		return ""
	}
	sort.Strings(candidates)
	cm := closestmatch.New(candidates, []int{1, 2, 3})

	best, bestScore := "", 0.0
	for _, header := range accepted {
		header = normalize.Header(header)
		for _, text := range cm.ClosestN(header, len(candidates)) {
			if text == "" {
				continue
			}
			score := similarity(header, text)
			if score < minSuggestionScore {
				continue
			}
			if score > bestScore || (score == bestScore && text < best) {
				best, bestScore = text, score
			}
		}
	}
	return best
}

// similarity is the Dice coefficient of the rune bigrams of a and b, each
// padded with a space so one-character headers still have bigrams.
func similarity(a, b string) float64 {
	ga, gb := bigrams(a), bigrams(b)
	if len(ga)+len(gb) == 0 {
		return 0
	}
	shared := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ga)+len(gb))
}

func bigrams(s string) map[string]struct{} {
	runes := []rune(" " + s + " ")
	out := make(map[string]struct{}, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		out[string(runes[i:i+2])] = struct{}{}
	}
	return out
}

func joinAttrs(attrs []Attribute) string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = string(a)
	}
	return strings.Join(names, "|")
}
