package bytesum

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsigned(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want byte
	}{
		{name: "Empty", in: nil, want: 0},
		{name: "Small", in: []byte{0x01, 0x02, 0x03}, want: 0x06},
		{name: "WrapsToZero", in: []byte{0xFF, 0x01}, want: 0x00},
		{name: "WrapsTwice", in: []byte{0x80, 0x80, 0x80, 0x80, 0x05}, want: 0x05},
		{name: "AllOnes", in: []byte{0xFF, 0xFF, 0xFF}, want: 0xFD},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Unsigned(tc.in))
		})
	}
}

func TestSigned(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want int8
	}{
		{name: "Empty", in: nil, want: 0},
		{name: "PositiveOverflow", in: []byte{0x7F, 0x01}, want: -128},
		{name: "PositiveOverflowLarge", in: []byte{0x7F, 0x7F}, want: -2},
		{name: "NegativeUnderflow", in: []byte{0x80, 0xFF}, want: 127},
		{name: "NegativeUnderflowToZero", in: []byte{0x80, 0x80}, want: 0},
		{name: "MixedSigns", in: []byte{0x01, 0xFF}, want: 0},
		{name: "Negative", in: []byte{0xFE, 0xFF}, want: -3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Signed(tc.in))
		})
	}
}

func TestSigned_MatchesUnsignedBitPattern(t *testing.T) {
	rng := rand.New(rand.NewSource(72))
	for i := 0; i < 500; i++ {
		buf := make([]byte, rng.Intn(128))
		_, err := rng.Read(buf)
		require.NoError(t, err)
		require.Equal(t, int8(Unsigned(buf)), Signed(buf), "input % X", buf)
	}
}
