// salsa6_test.go - Salsa6 tests
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cookiejar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSalsa6KnownAnswer(t *testing.T) {
	key := testKey()

	for _, v := range []struct {
		addr   []byte
		epoch  uint32
		digest uint32
	}{
		{[]byte{127, 0, 0, 1}, 0, 0x3999a50b},
		{[]byte{127, 0, 0, 1}, 1, 0xb068dc96},
		{[]byte{127, 0, 0, 1}, 0xffffffff, 0x2f164cc2},
		{[]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, 0x1234, 0xec100e1d},
		{nil, 0, 0xace03b94},
		{[]byte{0xfe, 0x80, 0x01}, 7, 0xbbeaab38},
	} {
		require.Equal(t, v.digest, salsa6(key, v.addr, v.epoch), "salsa6(%x, %#x)", v.addr, v.epoch)
	}
}

func TestSalsa6AddressAbsorption(t *testing.T) {
	key := testKey()

	// Bytes past the end of the address stay key material, so zero
	// extending an address changes the digest.
	v4 := []byte{127, 0, 0, 1}
	require.NotEqual(t, salsa6(key, v4, 0), salsa6(key, append(v4, make([]byte, 12)...), 0), "IPv4 vs zero extension")
	require.Equal(t, uint32(0xccddccb6), salsa6(key, append(v4, make([]byte, 12)...), 0), "zero extension")
	require.NotEqual(t, salsa6(key, []byte{0xfe, 0x80, 0x01}, 7), salsa6(key, []byte{0xfe, 0x80, 0x01, 0x00}, 7), "partial word")
	require.NotEqual(t, salsa6(key, nil, 0), salsa6(key, make([]byte, MaxAddressSize), 0), "empty address")

	// 42.0.20.80 and 2a00:1450:: share their leading bytes.
	v6 := []byte{0x2a, 0x00, 0x14, 0x50, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	require.Equal(t, uint32(0x0783206a), salsa6(key, v6[:4], 0), "42.0.20.80")
	require.Equal(t, uint32(0x2afe95f3), salsa6(key, v6, 0), "2a00:1450::")

	var s salsaState
	s.init(key, []byte{1, 2, 3, 4, 5}, 0)
	require.Equal(t, uint32(0x04030201), s[4], "word 4")
	require.Equal(t, uint32(0x17161505), s[5], "word 5")
	require.Equal(t, uint32(0x1b1a1918), s[6], "word 6")
	require.Equal(t, uint32(0x1f1e1d1c), s[7], "word 7")
}

func TestSalsa6EpochAbsorption(t *testing.T) {
	key := testKey()

	var s salsaState
	s.init(key, nil, 0xf0000001)
	for i, w := range s {
		expected := uint32(i*4) | uint32(i*4+1)<<8 | uint32(i*4+2)<<16 | uint32(i*4+3)<<24
		switch i {
		case epochWord0, epochWord1:
			expected += 0xf0000001
		}
		require.Equal(t, expected, w, "word %d", i)
	}
}

func TestSalsa6Schedule(t *testing.T) {
	var targets [salsaStateSize]int
	for i, op := range salsaSchedule {
		require.NotEqual(t, op.t, op.a, "op %d", i)
		require.NotEqual(t, op.t, op.b, "op %d", i)
		require.Contains(t, []int{7, 9, 13, 18}, op.r, "op %d", i)
		require.Equal(t, []int{7, 9, 13, 18}[i%4], op.r, "op %d", i)
		targets[op.t]++
	}
	for i, n := range targets {
		require.Equal(t, 2, n, "word %d targeted", i)
	}
}

var globalDigest uint32

func BenchmarkSalsa6(b *testing.B) {
	key := testKey()
	addr := make([]byte, MaxAddressSize)
	for i := 0; i < b.N; i++ {
		globalDigest = salsa6(key, addr, uint32(i))
	}
}
