// Package locale lists the supported app languages and their currency symbols.
package locale

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Language is a BCP-47-ish tag as stored in preferences.
type Language string

const (
	System             Language = "system"
	Japanese           Language = "ja"
	English            Language = "en"
	Spanish            Language = "es"
	Italian            Language = "it"
	PortugueseBR       Language = "pt-BR"
	French             Language = "fr"
	German             Language = "de"
	Arabic             Language = "ar"
	Indonesian         Language = "in"
	Thai               Language = "th"
	Turkish            Language = "tr"
	Vietnamese         Language = "vi"
	ChineseTraditional Language = "zh-TW"
	Korean             Language = "ko"
)

var currency = map[Language]string{
	System:             "$",
	English:            "$",
	Japanese:           "¥",
	French:             "€",
	German:             "€",
	Spanish:            "€",
	Italian:            "€",
	PortugueseBR:       "R$",
	Indonesian:         "Rp",
	Thai:               "฿",
	Turkish:            "₺",
	Vietnamese:         "₫",
	ChineseTraditional: "NT$",
	Korean:             "₩",
	Arabic:             "ج.م",
}

// Languages returns every supported language, System first.
func Languages() []Language {
	return []Language{System, Japanese, English, Spanish, Italian, PortugueseBR, French, German,
		Arabic, Indonesian, Thai, Turkish, Vietnamese, ChineseTraditional, Korean}
}

// Parse matches a tag case-insensitively. Unknown tags report ok=false and
// fall back to System.
func Parse(tag string) (Language, bool) {
	for _, l := range Languages() {
		if strings.EqualFold(string(l), strings.TrimSpace(tag)) {
			return l, true
		}
	}
	return System, false
}

func (l Language) CurrencySymbol() string {
	if s, ok := currency[l]; ok {
		return s
	}
	return currency[System]
}

// FormatCost renders an amount with two decimals after the currency symbol.
func (l Language) FormatCost(amount decimal.Decimal) string {
	return l.CurrencySymbol() + amount.StringFixed(2)
}
