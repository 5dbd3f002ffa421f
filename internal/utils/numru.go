package utils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var rxKeepNums = regexp.MustCompile(`[^\d\.\-]`)

// ParseDecimalRU парсит "1 234,50", "197 ,00", "(2 345,6)" и т.п.
// (NBSP/NNBSP-разделители тысяч, запятая как десятичный знак,
// скобки как минус). Второй результат — признак успешного разбора.
func ParseDecimalRU(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	// убрать неразрывные/узкие пробелы и обычные пробелы, запятую → точка
	repl := strings.NewReplacer(" ", "", " ", "", " ", "", " ", "", "\t", "", ",", ".")
	s = repl.Replace(s)
	// оставить только цифры, точку и минус (на случай мусора вроде валюты)
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}
