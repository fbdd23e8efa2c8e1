package service

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func TestNormalizeBatchSettings_Defaults(t *testing.T) {
	s, err := NormalizeBatchSettings(BatchSettingsInput{Quantity: 10, BaseURL: " https://example.com/q/ "})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/q/", s.BaseURL)
	assert.Equal(t, "A4", s.PageFormat)
	assert.Equal(t, 8.0, s.MarginMM)
	assert.Equal(t, 4.0, s.GapMM)
	assert.Equal(t, 4, s.Cols)
	assert.Equal(t, 6, s.Rows)
	assert.Equal(t, "preset", s.SizeMode)
	assert.Equal(t, 30.0, s.SizeMM)
}

func TestNormalizeBatchSettings(t *testing.T) {
	tests := []struct {
		name     string
		in       BatchSettingsInput
		wantSize float64
		field    string
		message  string
	}{
		{
			name:     "large preset",
			in:       BatchSettingsInput{SizePreset: "l", Cols: intPtr(4), Rows: intPtr(6)},
			wantSize: 40,
		},
		{
			name:     "custom size",
			in:       BatchSettingsInput{SizeMode: "CUSTOM", SizeMM: floatPtr(18), PageFormat: "letter"},
			wantSize: 18,
		},
		{
			name:    "custom without size",
			in:      BatchSettingsInput{SizeMode: "custom"},
			field:   "size_mm",
			message: "The size_mm field is required when size_mode is custom.",
		},
		{
			name:    "custom too small",
			in:      BatchSettingsInput{SizeMode: "custom", SizeMM: floatPtr(17.5)},
			field:   "size_mm",
			message: "must be between 18 and 80",
		},
		{
			name:    "unknown preset",
			in:      BatchSettingsInput{SizePreset: "XL"},
			field:   "size_preset",
			message: "Invalid size preset.",
		},
		{
			name:    "too wide",
			in:      BatchSettingsInput{Cols: intPtr(6), SizePreset: "L"},
			field:   "cols",
			message: "Layout width 276.00mm exceeds A4 width 210.00mm. Reduce cols/size/gap/margin.",
		},
		{
			name:    "too tall",
			in:      BatchSettingsInput{Rows: intPtr(8), Cols: intPtr(1), MarginMM: floatPtr(0), GapMM: floatPtr(0), SizePreset: "L"},
			field:   "rows",
			message: "Layout height 320.00mm exceeds A4 height 297.00mm. Reduce rows/size/gap/margin.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NormalizeBatchSettings(tt.in)
			if tt.field == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantSize, s.SizeMM)
				return
			}

			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.EqualError(t, errs[tt.field], tt.message)
		})
	}
}

func TestBuildQrURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{base: "https://example.com/scan?t={token}", want: "https://example.com/scan?t=abc"},
		{base: "https://example.com/q/", want: "https://example.com/q/abc"},
		{base: "https://example.com/scan?t=", want: "https://example.com/scan?t=abc"},
		{base: "https://example.com/q", want: "https://example.com/q/abc"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildQrURL(tt.base, "abc"), tt.base)
	}
}
