// Парсер .xls: ширину таблицы фиксируем сами и читаем все ячейки до неё,
// не полагаясь на Row.LastCol().
package fileio

import (
	"bytes"
	"errors"
	"io"
	"strings"

	xls "github.com/extrame/xls"
)

// normalizeCell — срезает обрамляющие пробелы, включая неразрывные.
func normalizeCell(s string) string {
	return strings.Trim(s, " \t  ")
}

// computeMaxCols — пробегает строки и ищет самую правую непустую ячейку.
func computeMaxCols(sheet *xls.WorkSheet) int {
	const probeMax = 512
	maxCols := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		for j := 0; j < probeMax; j++ {
			if v := normalizeCell(r.Col(j)); v != "" && j+1 > maxCols {
				maxCols = j + 1
			}
		}
	}
	if maxCols == 0 {
		maxCols = 1
	}
	return maxCols
}

func readXLS(r io.Reader, headerRow int) (Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Table{}, err
	}

	// .xls из 1С чаще всего cp1251, но иногда UTF-8/KOI8-R
	var wb *xls.WorkBook
	tryCharsets := []string{"windows-1251", "utf-8", "koi8-r"}
	var lastErr error
	for _, ch := range tryCharsets {
		wb, err = xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && wb != nil {
			lastErr = nil
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return Table{}, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return Table{}, nil
	}

	maxCols := computeMaxCols(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, maxCols)
		if row != nil {
			for j := 0; j < maxCols; j++ {
				cols[j] = normalizeCell(row.Col(j))
			}
		}
		rows = append(rows, cols)
	}
	return buildTable(rows, headerRow), nil
}
