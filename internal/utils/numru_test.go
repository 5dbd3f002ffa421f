package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseDecimalRU(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1 234,50", "1234.5", true},
		{"197 ,00", "197", true},
		{"2 345,6", "2345.6", true},
		{"(1 500)", "-1500", true},
		{"-12.5", "-12.5", true},
		{"1 000 грн", "1000", true},
		{"", "0", false},
		{"abc", "0", false},
		{"-", "0", false},
	}
	for _, c := range cases {
		got, ok := ParseDecimalRU(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		assert.True(t, got.Equal(decimal.RequireFromString(c.want)), "input %q: got %s", c.in, got)
	}
}
