package headless

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Price texts
const (
	LabelPriceless  = "Бесценно"
	currencySuffix  = " синапсов"
	chargedTemplate = "Списано "
)

// Category modifiers used by the storefront stylesheet
var categoryModifiers = map[string]string{
	"софт-скил":      "soft",
	"хард-скил":      "hard",
	"другое":         "other",
	"дополнительное": "additional",
	"кнопка":         "button",
}

// PriceFormatter renders amounts with Russian digit grouping
type PriceFormatter struct {
	printer *message.Printer
}

// NewPriceFormatter creates a formatter for the Russian locale
func NewPriceFormatter() *PriceFormatter {
	return &PriceFormatter{printer: message.NewPrinter(language.Russian)}
}

// Amount formats a number as "1 450" or "1 450,50". Group separators are
// plain spaces.
func (f *PriceFormatter) Amount(amount decimal.Decimal) string {
	whole := f.printer.Sprintf("%d", amount.IntPart())
	whole = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, whole)

	if amount.IsInteger() {
		return whole
	}
	fixed := amount.Abs().StringFixed(2)
	return whole + "," + fixed[strings.IndexByte(fixed, '.')+1:]
}

// Price formats a product price; nil renders as "Бесценно"
func (f *PriceFormatter) Price(price *decimal.Decimal) string {
	if price == nil {
		return LabelPriceless
	}
	return f.Total(*price)
}

// Total formats a sum as "<n> синапсов"
func (f *PriceFormatter) Total(amount decimal.Decimal) string {
	return f.Amount(amount) + currencySuffix
}

// Charged formats the success message
func (f *PriceFormatter) Charged(amount decimal.Decimal) string {
	return chargedTemplate + f.Total(amount)
}

// CategoryModifier returns the stylesheet modifier of a category, or "other"
func CategoryModifier(category string) string {
	if m, ok := categoryModifiers[strings.ToLower(category)]; ok {
		return m
	}
	return "other"
}

// ResolveImage joins a feed image path onto the CDN base. Absolute image
// URLs are returned unchanged.
func ResolveImage(cdnURL, image string) string {
	if image == "" {
		return ""
	}
	if u, err := url.Parse(image); err == nil && u.IsAbs() {
		return image
	}
	if cdnURL == "" {
		return image
	}
	joined, err := url.JoinPath(cdnURL, image)
	if err != nil {
		return image
	}
	return joined
}
