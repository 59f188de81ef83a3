package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want Cents
	}{
		{"12.34", 1234},
		{"12,34", 1234},
		{"12", 1200},
		{"12.3", 1230},
		{"12.345", 1235},
		{"12.344", 1234},
		{"0.01", 1},
		{".50", 50},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseAmountRejects(t *testing.T) {
	for _, in := range []string{
		"", ".", "-1", "+1", "1.2.3", "abc", "12.3a",
		// Whole parts near and past the int64 ceiling must error, not wrap.
		"922337203685477581",
		"92233720368547758070",
	} {
		_, err := ParseAmount(in)
		require.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestParseAmountLargestRepresentable(t *testing.T) {
	got, err := ParseAmount("92233720368547757.99")
	require.NoError(t, err)
	require.Equal(t, Cents(9223372036854775799), got)
}

func TestString(t *testing.T) {
	require.Equal(t, "12.05", Cents(1205).String())
	require.Equal(t, "0.09", Cents(9).String())
}

func TestClampedSub(t *testing.T) {
	require.Equal(t, Cents(40), ClampedSub(60, 20))
	require.Equal(t, Cents(0), ClampedSub(20, 60))
	require.Equal(t, Cents(0), ClampedSub(20, 20))
}
