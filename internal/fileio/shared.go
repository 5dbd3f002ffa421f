package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Table — таблица источника: заголовки в исходном порядке + записи.
// Порядок колонок важен: по нему строятся маппинг, отчёт о качестве
// и экспорт.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// Empty — true, если нет ни одной записи.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// ReadAny — выбирает парсер по расширению файла.
// headerRow — номер строки заголовков (1-based); значения меньше 1
// приводятся к 1, иначе строка заголовков попала бы в данные.
func ReadAny(r io.Reader, filename string, headerRow int) (Table, error) {
	if headerRow < 1 {
		headerRow = 1
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	default:
		return Table{}, fmt.Errorf("unsupported file: %s", filename)
	}
}

// pickHeader — берёт строку заголовков; пустым ячейкам подставляет
// "Column N", дубликаты различает суффиксом ".N" (как pandas).
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	seen := map[string]int{}
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		if n, ok := seen[v]; ok {
			seen[v] = n + 1
			v = fmt.Sprintf("%s.%d", v, n)
		} else {
			seen[v] = 1
		}
		out[i] = v
	}
	return out
}

// buildTable — собирает Table из AoA, пропуская полностью пустые строки.
func buildTable(rows [][]string, headerRow int) Table {
	if len(rows) == 0 {
		return Table{}
	}
	headers := pickHeader(rows, headerRow)
	t := Table{Headers: headers}
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			m[h] = v
			if strings.TrimSpace(v) != "" {
				empty = false
			}
		}
		if !empty {
			t.Rows = append(t.Rows, m)
		}
	}
	return t
}
