// Отчёт о качестве загруженной таблицы: заполненность и кардинальность
// по колонкам. Информационный слой — никакая кривизна данных здесь не
// становится ошибкой.
package quality

import (
	"fmt"
	"regexp"
	"strings"
)

// ColumnStat — статистика одной колонки источника.
type ColumnStat struct {
	Column  string `json:"column"`
	Type    string `json:"type"` // number | text | empty
	Total   int    `json:"total"`
	Filled  int    `json:"filled"`
	Empty   int    `json:"empty"`
	Unique  int    `json:"unique"`
	FillPct string `json:"fillPct"` // "96.7%"
}

// Строго числовой вид: цифры с разделителями тысяч/десятичных, без букв.
// Снисходительный utils.ParseDecimalRU тут не годится — он вытащит «1»
// даже из артикула "A1".
var rxNumeric = regexp.MustCompile(`^\(?-?[\d\s  ]+([.,]\d+)?\)?$`)

// Analyze — по колонке на запись, в порядке заголовков таблицы.
func Analyze(headers []string, rows []map[string]string) []ColumnStat {
	total := len(rows)
	out := make([]ColumnStat, 0, len(headers))
	for _, h := range headers {
		uniq := map[string]bool{}
		filled, numeric := 0, 0
		for _, rec := range rows {
			v := strings.TrimSpace(rec[h])
			if v == "" {
				continue
			}
			filled++
			uniq[v] = true
			if rxNumeric.MatchString(v) {
				numeric++
			}
		}
		st := ColumnStat{
			Column: h,
			Total:  total,
			Filled: filled,
			Empty:  total - filled,
			Unique: len(uniq),
		}
		switch {
		case filled == 0:
			st.Type = "empty"
		case numeric == filled:
			st.Type = "number"
		default:
			st.Type = "text"
		}
		if total > 0 {
			st.FillPct = fmt.Sprintf("%.1f%%", float64(filled)/float64(total)*100)
		} else {
			st.FillPct = "0.0%"
		}
		out = append(out, st)
	}
	return out
}
