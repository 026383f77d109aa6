package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Cents
		wantErr bool
	}{
		{name: "plain integer", input: "12", want: 1200},
		{name: "two decimals", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "single decimal", input: "12.5", want: 1250},
		{name: "third decimal rounds up", input: "0.125", want: 13},
		{name: "third decimal rounds down", input: "0.124", want: 12},
		{name: "zero", input: "0", want: 0},
		{name: "surrounding space", input: " 7.50 ", want: 750},
		{name: "negative rejected", input: "-1.00", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "garbage rejected", input: "abc", wantErr: true},
		{name: "double separator rejected", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCents(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentsString(t *testing.T) {
	assert.Equal(t, "0.00", Cents(0).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "12.34", Cents(1234).String())
	assert.Equal(t, "900.00", Cents(90000).String())
}

func TestCentsJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(Cents(1234))
	require.NoError(t, err)
	assert.Equal(t, `"12.34"`, string(raw))

	var fromString Cents
	require.NoError(t, json.Unmarshal([]byte(`"12.34"`), &fromString))
	assert.Equal(t, Cents(1234), fromString)

	var fromNumber Cents
	require.NoError(t, json.Unmarshal([]byte(`12.34`), &fromNumber))
	assert.Equal(t, Cents(1234), fromNumber)
}
