package fileio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAny_CSV(t *testing.T) {
	csv := "Магазин,Артикул,Кол-во\n101,A1,10\n,,\n102,A2,5\n"
	tab, err := ReadAny(strings.NewReader(csv), "plan.csv", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Магазин", "Артикул", "Кол-во"}, tab.Headers)
	require.Len(t, tab.Rows, 2, "полностью пустые строки пропускаются")
	assert.Equal(t, "101", tab.Rows[0]["Магазин"])
	assert.Equal(t, "5", tab.Rows[1]["Кол-во"])
}

func TestReadAny_HeaderRow(t *testing.T) {
	csv := "Отчёт за август,,\nМагазин,Артикул,Кол-во\n101,A1,10\n"
	tab, err := ReadAny(strings.NewReader(csv), "plan.csv", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"Магазин", "Артикул", "Кол-во"}, tab.Headers)
	require.Len(t, tab.Rows, 1)
}

func TestReadAny_HeaderRowBelowOne(t *testing.T) {
	// 0 и отрицательные значения приводятся к 1: строка заголовков
	// не должна всплывать как строка данных
	csv := "Магазин,Артикул,Кол-во\n101,A1,10\n"
	for _, hr := range []int{0, -3} {
		tab, err := ReadAny(strings.NewReader(csv), "plan.csv", hr)
		require.NoError(t, err)

		assert.Equal(t, []string{"Магазин", "Артикул", "Кол-во"}, tab.Headers)
		require.Len(t, tab.Rows, 1, "headerRow=%d", hr)
		assert.Equal(t, "101", tab.Rows[0]["Магазин"])
	}
}

func TestReadAny_DuplicateAndEmptyHeaders(t *testing.T) {
	csv := "Кол-во,,Кол-во\n1,2,3\n"
	tab, err := ReadAny(strings.NewReader(csv), "x.csv", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Кол-во", "Column 2", "Кол-во.1"}, tab.Headers)
	assert.Equal(t, "1", tab.Rows[0]["Кол-во"])
	assert.Equal(t, "3", tab.Rows[0]["Кол-во.1"])
}

func TestReadAny_Unsupported(t *testing.T) {
	_, err := ReadAny(strings.NewReader("x"), "data.pdf", 1)
	assert.Error(t, err)
}

func TestTableEmpty(t *testing.T) {
	assert.True(t, Table{}.Empty())
	assert.False(t, Table{Rows: []map[string]string{{}}}.Empty())
}
