package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatInterval(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		days     float64
		expected string
	}{
		{0, "0m"},
		{10.0 / (24 * 60), "10m"},
		{59.0 / (24 * 60), "59m"},
		{59.6 / (24 * 60), "1h"},
		{5.0 / 24, "5h"},
		{0.99, "24h"},
		{1, "1d"},
		{3, "3d"},
		{29.4, "29d"},
		{30, "1mo"},
		{45, "2mo"},
		{364, "12mo"},
		{365, "1.0y"},
		{547.5, "1.5y"},
		{36500, "100.0y"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatInterval(tc.days))
		})
	}
}
