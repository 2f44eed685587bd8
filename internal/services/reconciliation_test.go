package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveQuantity(t *testing.T) {
	testCases := []struct {
		name        string
		baseline    int64
		approvedSum int64
		expected    int64
	}{
		{"пустой журнал", 10, 0, 10},
		{"приходы и расходы", 10, 5, 15},
		{"расходов больше приходов", 10, -4, 6},
		{"нулевой остаток", 10, -10, 0},
		{"нулевая база", 0, 7, 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EffectiveQuantity(tc.baseline, tc.approvedSum))
		})
	}
}

func TestCanRemove(t *testing.T) {
	testCases := []struct {
		name      string
		effective int64
		requested int64
		allowed   bool
	}{
		{"остаток больше запроса", 10, 3, true},
		{"остаток равен запросу", 5, 5, true},
		{"остатка не хватает", 2, 3, false},
		{"нулевой остаток", 0, 1, false},
		{"нулевой запрос", 10, 0, false},
		{"отрицательный запрос", 10, -1, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanRemove(tc.effective, tc.requested))
		})
	}
}
