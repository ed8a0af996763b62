package torg12

import (
	"errors"
	"testing"

	"github.com/ginjaninja78/torg12/internal/grid"
	"github.com/ginjaninja78/torg12/internal/normalize"
)

func TestMapColumnsStandardHeader(t *testing.T) {
	sheet := invoiceSheet("s")
	cols, dataStart, err := mapColumns(sheet, 0, mustVocabulary(t))
	if err != nil {
		t.Fatalf("mapColumns() error = %v", err)
	}

	want := map[Attribute]int{
		AttrNum:             0,
		AttrName:            1,
		AttrCode:            2,
		AttrCnt:             3,
		AttrPriceWithoutTax: 4,
		AttrPriceWithTax:    5,
		AttrTaxRate:         6,
	}
	for attr, col := range want {
		pos := cols.Get(attr)
		if pos == nil {
			t.Errorf("%s not mapped", attr)
			continue
		}
		if pos.Col != col || pos.Row != 3 {
			t.Errorf("%s at (%d, %d), want (%d, 3)", attr, pos.Col, pos.Row, col)
		}
	}
	if cols.Has(AttrSumWithTax) || cols.Has(AttrCntPlace) {
		t.Errorf("unexpected mapping %+v", cols)
	}
	if dataStart != 4 {
		t.Errorf("dataStart = %d, want 4", dataStart)
	}
}

func TestMapColumnsFirstMatchWins(t *testing.T) {
	header := []string{"№", "Наименование", "Код", "Артикул", "Кол-во", "Цена", "Цена с НДС, руб.", "Ставка НДС", "Код"}
	sheet := grid.NewMatrix("s", [][]string{header})

	cols, _, err := mapColumns(sheet, 0, mustVocabulary(t))
	if err != nil {
		t.Fatalf("mapColumns() error = %v", err)
	}
	if cols.Code.Col != 2 {
		t.Errorf("code column = %d, want 2", cols.Code.Col)
	}
}

func TestMapColumnsCompositeQuantity(t *testing.T) {
	sheet := grid.NewMatrix("s", [][]string{
		{"№", "Наименование", "Код", "Количество", "", "Цена", "Цена с НДС, руб.", "Ставка НДС"},
		{"", "", "", "в одном\nместе", "мест,\nштук", "", "", ""},
	})

	cols, dataStart, err := mapColumns(sheet, 0, mustVocabulary(t))
	if err != nil {
		t.Fatalf("mapColumns() error = %v", err)
	}
	if cols.Cnt != nil {
		t.Errorf("cnt mapped at %+v, want unmapped", *cols.Cnt)
	}
	if cols.CntPlace == nil || cols.CntPlace.Col != 4 || cols.CntPlace.Row != 1 {
		t.Errorf("cnt_place = %+v, want (4, 1)", cols.CntPlace)
	}
	if dataStart != 2 {
		t.Errorf("dataStart = %d, want 2", dataStart)
	}
}

func TestMapColumnsSumWithTaxPattern(t *testing.T) {
	sheet := grid.NewMatrix("s", [][]string{
		{"№", "Наименование", "Код", "Кол-во", "Цена", "Сумма без учета НДС, руб. коп.", "Сумма с\nучетом НДС, руб. коп.", "Ставка, %"},
	})

	cols, _, err := mapColumns(sheet, 0, mustVocabulary(t))
	if err != nil {
		t.Fatalf("mapColumns() error = %v", err)
	}
	if cols.SumWithTax == nil || cols.SumWithTax.Col != 6 {
		t.Errorf("sum_with_tax = %+v, want column 6", cols.SumWithTax)
	}
	if cols.PriceWithTax != nil {
		t.Errorf("price_with_tax = %+v, want unmapped", cols.PriceWithTax)
	}
}

func TestMapColumnsReportsFirstMissingRequirement(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   string
	}{
		{"no num", []string{"Наименование", "Код", "Кол-во", "Цена", "Цена с НДС, руб.", "Ставка НДС"}, "num"},
		{"no code and no tax rate", []string{"№", "Наименование", "Кол-во", "Цена", "Цена с НДС, руб."}, "code"},
		{"no quantity", []string{"№", "Наименование", "Код", "Цена", "Цена с НДС, руб.", "Ставка НДС"}, "cnt|cnt_place"},
		{"no tax inclusive price", []string{"№", "Наименование", "Код", "Кол-во", "Цена", "Ставка НДС"}, "price_with_tax|sum_with_tax"},
		{"no tax rate", []string{"№", "Наименование", "Код", "Кол-во", "Цена", "Цена с НДС, руб.", "НДС"}, "tax_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := grid.NewMatrix("Лист1", [][]string{tt.header})
			_, _, err := mapColumns(sheet, 0, mustVocabulary(t))
			if !errors.Is(err, ErrStructure) {
				t.Fatalf("error = %v, want ErrStructure", err)
			}
			var structErr *StructuralError
			if !errors.As(err, &structErr) {
				t.Fatalf("error %T is not *StructuralError", err)
			}
			if structErr.Attribute != tt.want {
				t.Errorf("Attribute = %q, want %q", structErr.Attribute, tt.want)
			}
			if structErr.Sheet != "Лист1" || len(structErr.Accepted) == 0 {
				t.Errorf("unexpected error details %+v", structErr)
			}
		})
	}
}

func TestMapColumnsSuggestsClosestUnmappedHeader(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   string
	}{
		{
			"latin n for number sign",
			[]string{"N п/п", "Наименование", "Код", "Кол-во", "Цена", "Цена с НДС, руб.", "Ставка НДС"},
			"N п/п",
		},
		{
			"misspelled tax rate ignores mapped price column",
			[]string{"№", "Наименование", "Код", "Кол-во", "Цена", "Цена с НДС, руб.", "Ставка НДС %%"},
			"Ставка НДС %%",
		},
		{
			"bare vat column",
			[]string{"№", "Наименование", "Код", "Кол-во", "Цена", "Цена с НДС, руб.", "НДС"},
			"НДС",
		},
		{
			"nothing similar",
			[]string{"№", "Наименование", "Код", "Кол-во", "Цена", "Цена с НДС, руб.", "Примечание"},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := grid.NewMatrix("s", [][]string{tt.header})
			_, _, err := mapColumns(sheet, 0, mustVocabulary(t))
			var structErr *StructuralError
			if !errors.As(err, &structErr) {
				t.Fatalf("error = %v, want *StructuralError", err)
			}
			want := ""
			if tt.want != "" {
				want = normalize.Header(tt.want)
			}
			if structErr.Suggestion != want {
				t.Errorf("Suggestion = %q, want %q", structErr.Suggestion, want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	if got := similarity("ндс %", "ндс %"); got != 1 {
		t.Errorf("identical = %v, want 1", got)
	}
	if got := similarity("№", "примечание"); got != 0 {
		t.Errorf("disjoint = %v, want 0", got)
	}
	if near, far := similarity("№ п/п", "n п/п"), similarity("№ п/п", "наименование"); near <= far {
		t.Errorf("similarity ranks %v <= %v", near, far)
	}
}
