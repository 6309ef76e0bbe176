package phone

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Normalize(t *testing.T) {
	v := New("br")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "e164", raw: "+5511987654321", want: "5511987654321"},
		{name: "formatted international", raw: "+55 (11) 98765-4321", want: "5511987654321"},
		{name: "country code without plus", raw: "5511987654321", want: "5511987654321"},
		{name: "national", raw: "(11) 98765-4321", want: "5511987654321"},
		{name: "float artefact", raw: "5511987654321.0", want: "5511987654321"},
		{name: "scientific notation", raw: "5.511987654321E+12", want: "5511987654321"},
		{name: "foreign with explicit plus", raw: "+1 650-253-0000", want: "16502530000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidator_NormalizeRejects(t *testing.T) {
	v := New("")

	for _, raw := range []string{"", "   ", "abc", "12345", "+55 11 1234"} {
		t.Run(raw, func(t *testing.T) {
			_, err := v.Normalize(raw)
			var inv *InvalidError
			require.True(t, errors.As(err, &inv), "expected InvalidError for %q, got %v", raw, err)
			assert.Equal(t, raw, inv.Raw)
			assert.NotEmpty(t, inv.Reason)
		})
	}
}

func TestNew_DefaultRegion(t *testing.T) {
	assert.Equal(t, DefaultRegion, New("").Region)
	assert.Equal(t, "PT", New(" pt ").Region)
}

func TestValidRegion(t *testing.T) {
	assert.True(t, ValidRegion("BR"))
	assert.True(t, ValidRegion("us"))
	assert.False(t, ValidRegion("XX"))
	assert.False(t, ValidRegion(""))
}
