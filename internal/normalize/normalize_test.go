package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestHeader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Наименование", "наименование"},
		{"surrounding space", "  Кол-во  ", "кол-во"},
		{"nbsp", "Цена\u00a0без\u00a0НДС", "цена без ндс"},
		{"line break", "Номер\nдокумента", "номер документа"},
		{"hyphenated break", "Коли-\nчество (масса нетто)", "количество (масса нетто)"},
		{"hyphen space", "Коли- чество", "количество"},
		{"soft hyphen", "Коли\u00adчество", "количество"},
		{"whitespace run", "Сумма \t с  НДС", "сумма с ндс"},
		{"keeps inner hyphen", "Штрих-код", "штрих-код"},
		{"number sign", "№\nп/п", "№ п/п"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Header(tt.in); got != tt.want {
				t.Errorf("Header(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		in      string
		numeric bool
		want    string
	}{
		{" АБВ-12 ", false, "АБВ-12"},
		{"1 234,50", true, "1 234.50"},
		{"1 234,50", false, "1 234,50"},
		{"Без НДС", true, "Без НДС"},
		{"a\n\nb", false, "a b"},
	}
	for _, tt := range tests {
		if got := Value(tt.in, tt.numeric); got != tt.want {
			t.Errorf("Value(%q, %v) = %q, want %q", tt.in, tt.numeric, got, tt.want)
		}
	}
}

func TestIdempotent(t *testing.T) {
	inputs := []string{
		"Коли-\nчество",
		"--  x",
		"- - x",
		"Цена, руб. коп.",
		" 1 234,5 ",
		"Сумма\r\nс учетом НДС",
		"",
	}
	for _, in := range inputs {
		h := Header(in)
		if again := Header(h); again != h {
			t.Errorf("Header not idempotent for %q: %q then %q", in, h, again)
		}
		for _, numeric := range []bool{false, true} {
			v := Value(in, numeric)
			if again := Value(v, numeric); again != v {
				t.Errorf("Value(numeric=%v) not idempotent for %q: %q then %q", numeric, in, v, again)
			}
		}
	}
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100", "100"},
		{"100,50", "100.5"},
		{"1 234,56", "1234.56"},
		{"1 234.56", "1234.56"},
		{"12 шт", "12"},
		{"-3.5", "-3.5"},
		{"7.", "7"},
		{"", "0"},
		{"abc", "0"},
		{"Без НДС", "0"},
	}
	for _, tt := range tests {
		want := decimal.RequireFromString(tt.want)
		if got := Decimal(tt.in); !got.Equal(want) {
			t.Errorf("Decimal(%q) = %s, want %s", tt.in, got, want)
		}
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1", 1},
		{" 12 ", 12},
		{"12.7", 12},
		{"18%", 18},
		{"1 000", 1000},
		{"abc", 0},
		{"", 0},
		{"-5", -5},
	}
	for _, tt := range tests {
		if got := Int(tt.in); got != tt.want {
			t.Errorf("Int(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"15.03.2017", day(2017, time.March, 15), true},
		{"5.3.2017", day(2017, time.March, 5), true},
		{"15.03.17", day(2017, time.March, 15), true},
		{"2017-03-15", day(2017, time.March, 15), true},
		{"15/03/2017", day(2017, time.March, 15), true},
		{"03-15-17", day(2017, time.March, 15), true},
		{"15 марта 2017 г.", day(2017, time.March, 15), true},
		{"«1» Апреля 2020", day(2020, time.April, 1), true},
		{"42809", day(2017, time.March, 15), true},
		{"31 февраля 2017", time.Time{}, false},
		{"скоро", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := Date(tt.in)
		if ok != tt.ok {
			t.Errorf("Date(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("Date(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
