package pricing

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		loc  Locale
		want float64
		ok   bool
	}{
		{"turkish with thousands", "1.234,56 TL", LocaleTR, 1234.56, true},
		{"turkish symbol prefix", "₺249,90", LocaleTR, 249.90, true},
		{"turkish plain", "99 TL", LocaleTR, 99, true},
		{"us with thousands", "$1,234.56", LocaleUS, 1234.56, true},
		{"us plain", "19.99 USD", LocaleUS, 19.99, true},
		{"zero is invalid", "₺0", LocaleTR, 0, false},
		{"garbage", "not a price", LocaleTR, 0, false},
		{"empty", "", LocaleTR, 0, false},
		{"whitespace only", "   ", LocaleUS, 0, false},
		{"price buried in text", "Fiyat: 2.499,00 TL (KDV dahil)", LocaleTR, 2499, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.text, tt.loc)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
