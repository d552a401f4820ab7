package models

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places an entered amount may carry.
const MoneyScale = 2

// WithinMoneyScale reports whether d has no non-zero digits past MoneyScale.
func WithinMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// Currency is a display label for amounts. No conversion is ever performed.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Currencies lists every currency the user may pick.
var Currencies = []Currency{
	{Code: "SYP", Symbol: "ل.س", Name: "Syrian Pound"},
	{Code: "SAR", Symbol: "﷼", Name: "Saudi Riyal"},
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
	{Code: "AED", Symbol: "د.إ", Name: "UAE Dirham"},
	{Code: "EGP", Symbol: "ج.م", Name: "Egyptian Pound"},
	{Code: "KWD", Symbol: "د.ك", Name: "Kuwaiti Dinar"},
	{Code: "QAR", Symbol: "ر.ق", Name: "Qatari Riyal"},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
	{Code: "CNY", Symbol: "元", Name: "Chinese Yuan"},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	{Code: "TRY", Symbol: "₺", Name: "Turkish Lira"},
}

// LookupCurrency finds a currency by its code.
func LookupCurrency(code string) (Currency, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// Locale selects the language of advisory text.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

// Valid reports whether l is a supported locale.
func (l Locale) Valid() bool {
	return l == LocaleEnglish || l == LocaleArabic
}

// Language returns the language name used when instructing the advisory service.
func (l Locale) Language() string {
	if l == LocaleArabic {
		return "Arabic"
	}
	return "English"
}
