package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

func TestOutput(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		spec Spec
		want string
	}{
		{"fixed", value.Number(1234.5), Spec{F, 8, 2}, " 1234.50"},
		{"comma", value.Number(1234.5), Spec{Comma, 9, 2}, " 1,234.50"},
		{"dot", value.Number(1234.5), Spec{Dot, 9, 2}, " 1.234,50"},
		{"dollar", value.Number(1234.5), Spec{Dollar, 10, 2}, " $1,234.50"},
		{"negative dollar", value.Number(-5), Spec{Dollar, 7, 2}, " -$5.00"},
		{"percent", value.Number(12.5), Spec{Pct, 6, 1}, " 12.5%"},
		{"scientific", value.Number(1500), Spec{E, 10, 3}, " 1.500E+03"},
		{"restricted", value.Number(42), Spec{N, 5, 0}, "00042"},
		{"restricted decimals", value.Number(1.23), Spec{N, 5, 2}, "00123"},
		{"sysmis", value.SystemMissing(), Spec{F, 8, 2}, "       ."},
		{"drops decimals to fit", value.Number(123.456), Spec{F, 5, 2}, "123.5"},
		{"drops grouping to fit", value.Number(1234), Spec{Comma, 4, 0}, "1234"},
		{"overflow", value.Number(123456789), Spec{F, 4, 0}, "****"},
		{"restricted negative", value.Number(-1), Spec{N, 3, 0}, "***"},
		{"negative zero", value.Number(-0.001), Spec{F, 5, 2}, " 0.00"},
		{"string", value.String("ab", 4), Spec{A, 4, 0}, "ab  "},
		{"kind mismatch", value.String("xyz", 3), Spec{F, 8, 2}, "xyz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Output(tt.v, tt.spec))
		})
	}
}

func TestInput(t *testing.T) {
	tests := []struct {
		text string
		spec Spec
		want float64
	}{
		{"1234.5", Spec{F, 8, 2}, 1234.5},
		{" 42 ", Spec{F, 8, 2}, 42},
		{"3,14", Spec{F, 8, 2}, 3.14},
		{"-2.5e3", Spec{E, 10, 3}, -2500},
		{"1,234.5", Spec{Comma, 9, 2}, 1234.5},
		{"$1,234.50", Spec{Dollar, 10, 2}, 1234.5},
		{"-$7", Spec{Dollar, 10, 2}, -7},
		{"1.234,5", Spec{Dot, 9, 2}, 1234.5},
		{"12%", Spec{Pct, 6, 1}, 12},
		{"00123", Spec{N, 5, 2}, 1.23},
	}
	for _, tt := range tests {
		t.Run(tt.spec.String()+" "+tt.text, func(t *testing.T) {
			v, err := Input(tt.text, tt.spec)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, v.Float(), 1e-9)
		})
	}
}

func TestInputBlankIsSysmis(t *testing.T) {
	for _, text := range []string{"", "   ", "."} {
		v, err := Input(text, Default(0))
		require.NoError(t, err)
		assert.True(t, v.IsSysMis(), "%q", text)
	}
}

func TestInputRejectsGarbage(t *testing.T) {
	for _, tc := range []struct {
		text string
		spec Spec
	}{
		{"abc", Default(0)},
		{"1.2.3", Default(0)},
		{"12a", Spec{N, 5, 0}},
		{"-1", Spec{N, 5, 0}},
		{"Inf", Default(0)},
	} {
		_, err := Input(tc.text, tc.spec)
		require.Error(t, err, tc.text)
		assert.True(t, errs.IsType(err, errs.ErrorTypeConversion))
	}
}

func TestInputString(t *testing.T) {
	v, err := Input("hello", Spec{Type: A, W: 3})
	require.NoError(t, err)
	assert.Equal(t, "hel", v.Str())

	v, err = Input("a", Spec{Type: A, W: 3})
	require.NoError(t, err)
	assert.Equal(t, "a  ", v.Str())
}

func TestRoundTrip(t *testing.T) {
	for _, spec := range []Spec{{F, 10, 2}, {Comma, 12, 2}, {Dot, 12, 2}, {Dollar, 12, 2}, {Pct, 10, 2}, {E, 12, 5}} {
		out := Output(value.Number(4321.25), spec)
		v, err := Input(out, spec)
		require.NoError(t, err, "%s %q", spec, out)
		assert.InDelta(t, 4321.25, v.Float(), 1e-9, spec.String())
	}
}

func TestParse(t *testing.T) {
	spec, err := Parse("F8.2")
	require.NoError(t, err)
	assert.Equal(t, Spec{F, 8, 2}, spec)

	spec, err = Parse("a16")
	require.NoError(t, err)
	assert.Equal(t, Spec{A, 16, 0}, spec)

	spec, err = Parse("COMMA10")
	require.NoError(t, err)
	assert.Equal(t, Spec{Comma, 10, 0}, spec)

	for _, bad := range []string{"", "8.2", "X8", "F50", "F8.9", "Fx"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestLimits(t *testing.T) {
	assert.Equal(t, 7, MaxDecimalsFor(F, 8))
	assert.Equal(t, 0, MaxDecimalsFor(E, 6))
	assert.Equal(t, MaxDecimals, MaxDecimalsFor(F, 40))
	assert.Equal(t, 0, MaxDecimalsFor(A, 10))
	assert.Equal(t, value.MaxStringWidth, MaxWidth(A))
	assert.Equal(t, 2, MinWidth(Dollar))

	assert.NoError(t, Spec{F, 8, 2}.Validate())
	assert.Error(t, Spec{F, 8, 8}.Validate())
	assert.Error(t, Spec{E, 5, 0}.Validate())

	assert.Equal(t, Spec{F, 3, 2}, Spec{F, 8, 6}.WithWidth(3))
	assert.NoError(t, Spec{A, 4, 0}.CheckWidth(4))
	assert.True(t, errs.IsShape(Spec{A, 4, 0}.CheckWidth(0)))
	assert.True(t, errs.IsShape(Default(0).CheckWidth(8)))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "F8.2", Spec{F, 8, 2}.String())
	assert.Equal(t, "F8.0", Spec{F, 8, 0}.String())
	assert.Equal(t, "A4", Spec{A, 4, 0}.String())
	assert.Equal(t, "Numeric", F.GUIName())
	assert.Equal(t, "String", A.GUIName())
}
