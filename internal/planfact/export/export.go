// Report Exporter: сериализация табличного результата в одностраничный
// XLSX с автоподбором ширины колонок. Вход не мутируется; максимум
// ширины ограничен, чтобы одна монструозная ячейка не раздула колонку.
package export

import (
	"fmt"
	"regexp"
	"time"

	excelize "github.com/xuri/excelize/v2"

	"planfact-service/internal/planfact/model"
)

const (
	sheetName   = "Анализ"
	maxColWidth = 50
)

// Sheet — готовый к записи лист: заголовки + строки ячеек.
type Sheet struct {
	Headers []string
	Rows    [][]any
}

// ToXLSX пишет лист в байтовый буфер формата xlsx.
func ToXLSX(s Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheetName, "A1", &s.Headers); err != nil {
		return nil, err
	}
	for i := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &s.Rows[i]); err != nil {
			return nil, err
		}
	}

	// ширина = самое длинное строковое представление в колонке + 2, с потолком
	for c, h := range s.Headers {
		width := len([]rune(h))
		for _, row := range s.Rows {
			if c < len(row) {
				if l := len([]rune(fmt.Sprint(row[c]))); l > width {
					width = l
				}
			}
		}
		width += 2
		if width > maxColWidth {
			width = maxColWidth
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, col, col, float64(width)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReconciledSheet — лист детальной таблицы сверки.
func ReconciledSheet(rows []model.ReconciledRow) Sheet {
	s := Sheet{Headers: []string{
		"Магазин", "Артикул", "Описание", "Модель", "Бренд", "Сегмент", "Цена",
		"План (шт.)", "Факт (шт.)", "План (грн)", "Факт (грн)",
		"Отклонение, шт", "Отклонение, грн", "Отклонение % (шт)", "Отклонение % (грн)",
	}}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{
			r.Store, r.Product, r.Description, r.Model, r.Brand, r.Segment,
			r.Price.InexactFloat64(),
			r.PlanQty.InexactFloat64(), r.FactQty.InexactFloat64(),
			r.PlanAmount.InexactFloat64(), r.FactAmount.InexactFloat64(),
			r.QtyVar.InexactFloat64(), r.AmountVar.InexactFloat64(),
			r.QtyVarPct.InexactFloat64(), r.AmountVarPct.InexactFloat64(),
		})
	}
	return s
}

// SummarySheet — лист свода по магазинам (withSegment — магазин×сегмент).
func SummarySheet(sums []model.Summary, withSegment bool) Sheet {
	headers := []string{"Магазин"}
	if withSegment {
		headers = append(headers, "Сегмент")
	}
	headers = append(headers,
		"План (шт.)", "Факт (шт.)", "План (грн)", "Факт (грн)",
		"Отклонение, шт", "Отклонение, грн", "Отклонение % (шт)", "Отклонение % (грн)")
	s := Sheet{Headers: headers}
	for _, r := range sums {
		row := []any{r.Store}
		if withSegment {
			row = append(row, r.Segment)
		}
		row = append(row,
			r.PlanQty.InexactFloat64(), r.FactQty.InexactFloat64(),
			r.PlanAmount.InexactFloat64(), r.FactAmount.InexactFloat64(),
			r.QtyVar.InexactFloat64(), r.AmountVar.InexactFloat64(),
			r.QtyVarPct.InexactFloat64(), r.AmountVarPct.InexactFloat64())
		s.Rows = append(s.Rows, row)
	}
	return s
}

var rxUnsafe = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// Filename — имя файла отчёта с датой и, при наличии, магазином:
// plan_fact_analysis[_<store>]_2006-01-02.xlsx
func Filename(store string, now time.Time) string {
	name := "plan_fact_analysis"
	if store != "" {
		name += "_" + rxUnsafe.ReplaceAllString(store, "_")
	}
	return fmt.Sprintf("%s_%s.xlsx", name, now.Format("2006-01-02"))
}
