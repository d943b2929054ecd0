package ncfilter

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-ncfilter/internal/param"
)

func TestParseSpecMasksNarrowValues(t *testing.T) {
	spec, err := ParseSpec("32768, -17b, 23ub, 77")
	require.NoError(t, err)

	assert.Equal(t, FilterID(32768), spec.ID)
	assert.Equal(t, []uint32{0xEF, 23, 77}, spec.Params)
}

func TestParseSpecAllKinds(t *testing.T) {
	const text = "32768, -17b, 23ub, -25S, 27US, 77, 93U, 789f, 12345678.12345678d, " +
		"-9223372036854775807L, 18446744073709551615UL, 2147483647, -2147483648, 4294967295"

	spec, err := ParseSpec(text)
	require.NoError(t, err)

	want := []uint32{
		0xEF,                   // -17b
		23,                     // 23ub
		0xFFE7,                 // -25s
		27,                     // 27us
		77,                     // 77
		93,                     // 93u
		1145389056,             // 789f
		3287505826, 1097305129, // 12345678.12345678d
		1, 2147483648,          // -9223372036854775807ll
		4294967295, 4294967295, // 18446744073709551615ull
		2147483647,
		2147483648,
		4294967295,
	}
	if diff := cmp.Diff(want, spec.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}

	f, err := param.Decode[float32](spec.Params[6:])
	require.NoError(t, err)
	assert.Equal(t, float32(789), f)

	d, err := param.Decode[float64](spec.Params[7:])
	require.NoError(t, err)
	assert.Equal(t, 12345678.12345678, d)

	ll, err := param.Decode[int64](spec.Params[9:])
	require.NoError(t, err)
	assert.Equal(t, int64(-9223372036854775807), ll)

	ull, err := param.Decode[uint64](spec.Params[11:])
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), ull)
}

func TestParseSpecIDOnly(t *testing.T) {
	spec, err := ParseSpec("2")
	require.NoError(t, err)
	assert.Equal(t, FilterShuffle, spec.ID)
	assert.NotNil(t, spec.Params)
	assert.Empty(t, spec.Params)
}

func TestParseSpecAcceptsPlusSign(t *testing.T) {
	spec, err := ParseSpec("1,+5u")
	require.NoError(t, err)
	assert.Equal(t, []uint32{5}, spec.Params)
}

func TestParseSpecErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		pos    int
		reason string
	}{
		{"empty", "", 0, "missing filter id"},
		{"blank id", "  ,1", 2, "missing filter id"},
		{"non-numeric id", "abc,1", 0, "non-numeric filter id"},
		{"negative id", "-1", 0, "non-numeric filter id"},
		{"id out of range", "4294967296", 0, "filter id out of range"},
		{"empty value", "1,,2", 2, "empty value"},
		{"unknown suffix", "1, 5q", 3, "unknown suffix"},
		{"suffix only", "1,u", 2, "missing numeral"},
		{"malformed", "1,1.5", 2, "malformed numeral"},
		{"byte overflow", "1,300b", 2, "out of range for int8"},
		{"ubyte negative", "1,-1ub", 2, "malformed numeral"},
		{"int overflow", "1,4294967296", 2, "out of range"},
		{"int underflow", "1,-2147483649", 2, "out of range for int32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.pos, perr.Pos)
			assert.Contains(t, perr.Reason, tt.reason)
			assert.Equal(t, tt.text, perr.Text)
		})
	}
}

func TestParseSpecList(t *testing.T) {
	specs, err := ParseSpecList("1,5|2|32015,3")
	require.NoError(t, err)

	want := []FilterSpec{
		{ID: FilterDeflate, Params: []uint32{5}},
		{ID: FilterShuffle, Params: []uint32{}},
		{ID: FilterZstd, Params: []uint32{3}},
	}
	assert.Equal(t, want, specs)
}

func TestParseSpecListEmpty(t *testing.T) {
	for _, text := range []string{"", "   "} {
		specs, err := ParseSpecList(text)
		require.NoError(t, err)
		assert.NotNil(t, specs)
		assert.Empty(t, specs)
	}
}

func TestParseSpecListErrorPosition(t *testing.T) {
	_, err := ParseSpecList("1,5|2,x")

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 6, perr.Pos)
	assert.Equal(t, "1,5|2,x", perr.Text)
}

func TestFormatSpecRoundTrip(t *testing.T) {
	texts := []string{
		"1,9",
		"2",
		"32768,-17b,23ub,-25s,12345678.12345678d,-9223372036854775807ll,789f",
		"4,32,16",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			spec, err := ParseSpec(text)
			require.NoError(t, err)

			again, err := ParseSpec(FormatSpec(spec))
			require.NoError(t, err)
			assert.True(t, spec.Equal(again), "got %v, want %v", again, spec)
		})
	}
}

func TestFormatSpec(t *testing.T) {
	assert.Equal(t, "1,5u", FormatSpec(FilterSpec{ID: 1, Params: []uint32{5}}))
	assert.Equal(t, "2", FilterSpec{ID: 2}.String())
	assert.Equal(t, "1,5u|2", FormatSpecList([]FilterSpec{
		{ID: 1, Params: []uint32{5}},
		{ID: 2},
	}))
}

func TestFilterSpecCloneIsDeep(t *testing.T) {
	orig := FilterSpec{ID: 1, Params: []uint32{5}}
	c := orig.Clone()
	c.Params[0] = 9
	assert.Equal(t, uint32(5), orig.Params[0])
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Text: "1,x", Pos: 2, Reason: "malformed numeral \"x\""}
	assert.Equal(t, `malformed filter spec: malformed numeral "x" at position 2 in "1,x"`, err.Error())
}

func TestFilterSpecYAML(t *testing.T) {
	var doc struct {
		Filters []FilterSpec `yaml:"filters"`
	}
	const text = `
filters:
  - "1,5"
  - {id: 32015, params: [3]}
  - {id: 2}
`
	require.NoError(t, yaml.Unmarshal([]byte(text), &doc))

	want := []FilterSpec{
		{ID: FilterDeflate, Params: []uint32{5}},
		{ID: FilterZstd, Params: []uint32{3}},
		{ID: FilterShuffle, Params: []uint32{}},
	}
	assert.Equal(t, want, doc.Filters)

	err := yaml.Unmarshal([]byte("filters: [\"1,x\"]"), &doc)
	assert.ErrorIs(t, err, ErrParse)
}
