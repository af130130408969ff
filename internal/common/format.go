package common

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DisplayCurrency is the ISO code used for money figures on the dashboard.
const DisplayCurrency = money.INR

// indexFormatter renders whole index levels with thousands separators.
var indexFormatter = money.NewFormatter(0, ".", ",", "", "1")

// FormatMoney formats an amount in the display currency, e.g. "₹1,234.50".
func FormatMoney(v decimal.Decimal) string {
	cur := displayCurrency()
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatRupees formats an amount rounded to whole units, e.g. "₹1,235".
// Account value, gain and change figures use it.
func FormatRupees(v decimal.Decimal) string {
	cur := displayCurrency()
	f := money.NewFormatter(0, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template)
	return f.Format(v.Round(0).IntPart())
}

// FormatSignedRupees formats a whole-unit amount with a +/- prefix.
func FormatSignedRupees(v decimal.Decimal) string {
	if v.Sign() >= 0 {
		return "+" + FormatRupees(v)
	}
	return FormatRupees(v)
}

func displayCurrency() money.Currency {
	return *money.New(0, DisplayCurrency).Currency()
}

// FormatPct formats a percentage with two decimals.
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatSignedPct formats a percentage with +/- prefix
func FormatSignedPct(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatIndex formats an index level rounded to whole points.
func FormatIndex(v decimal.Decimal) string {
	return indexFormatter.Format(v.Round(0).IntPart())
}
