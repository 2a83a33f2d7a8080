package exporter

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name  string
		input null.Float
		want  string
	}{
		{name: "null", input: null.Float{}, want: ""},
		{name: "zero", input: null.FloatFrom(0), want: "0"},
		{name: "integer", input: null.FloatFrom(42), want: "42"},
		{name: "fraction", input: null.FloatFrom(0.125), want: "0.125"},
		{name: "negative", input: null.FloatFrom(-12.6), want: "-12.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFloat(tt.input))
		})
	}
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "0", formatInt(0))
	assert.Equal(t, "-7", formatInt(-7))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "03-01-2024 09:05", formatDate(time.Date(2024, 1, 3, 9, 5, 0, 0, time.UTC)))
}
