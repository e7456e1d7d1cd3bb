// key_test.go - Key tests
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cookiejar

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	k0, err := NewKey()
	require.NoError(t, err, "NewKey")
	k1, err := NewKey()
	require.NoError(t, err, "NewKey")

	require.NotEqual(t, Key{}, *k0, "key is not zero")
	require.NotEqual(t, *k0, *k1, "keys differ")
}

func TestNewKeyFromSeed(t *testing.T) {
	for _, v := range []struct {
		seed string
		key  string
	}{
		{
			"0000000000000000000000000000000000000000000000000000000000000000",
			"76b8e0ada0f13d90405d6ae55386bd28bdd219b8a08ded1aa836efcc8b770dc7da41597c5157488d7724e03fb8d84a376a43b8f41518a11cc387b669b2ee6586",
		},
		{
			"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
			"39fd2b7dd9c5196a8dbd0377b8dc4a498a35d86fbcde6accb2cc7d4cd8ea24922b23cce7a26023ab3f0eef693ac87f64258235eab1f7a32dc22762a0485b410c",
		},
	} {
		seed, err := hex.DecodeString(v.seed)
		require.NoError(t, err, "hex.DecodeString(seed)")
		expected, err := hex.DecodeString(v.key)
		require.NoError(t, err, "hex.DecodeString(key)")

		k := NewKeyFromSeed(seed)
		require.Equal(t, expected, k[:], "NewKeyFromSeed(%s)", v.seed)
		require.Equal(t, *k, *NewKeyFromSeed(seed), "deterministic")
	}

	require.PanicsWithError(t, ErrInvalidSeedSize.Error(), func() {
		NewKeyFromSeed(make([]byte, SeedSize-1))
	}, "short seed")
	require.PanicsWithError(t, ErrInvalidSeedSize.Error(), func() {
		NewKeyFromSeed(nil)
	}, "nil seed")
}

func TestKeyReset(t *testing.T) {
	k := testKey()
	k.Reset()
	require.Equal(t, Key{}, *k, "Reset")
}

func TestKeyRedacted(t *testing.T) {
	k := testKey()
	verbs := []string{"%v", "%s", "%+v", "%#v", "%x", "%X", "%q", "%d", "%o", "%b", "%08d", "%T"}
	for _, f := range verbs {
		for _, v := range []interface{}{k, *k, []*Key{k}, struct{ K Key }{*k}} {
			s := fmt.Sprintf(f, v)
			require.NotContains(t, s, "0102", "Sprintf(%q, %T)", f, v)
			require.NotContains(t, s, "0 1 2", "Sprintf(%q, %T)", f, v)
			require.NotContains(t, s, "1 10 11", "Sprintf(%q, %T)", f, v)
		}
	}
	require.Equal(t, "[redacted]", fmt.Sprintf("%d", k), "Sprintf(%%d)")

	j, err := New(&Config{Key: k})
	require.NoError(t, err, "New")
	for _, f := range verbs {
		s := fmt.Sprintf(f, j)
		require.NotContains(t, s, "0 1 2", "Sprintf(%q, jar)", f)
		require.NotContains(t, s, "0102", "Sprintf(%q, jar)", f)
	}
}

func TestJarCopiesKey(t *testing.T) {
	clk := new(fakeClock)
	k := testKey()
	j, err := New(&Config{Key: k, Clock: clk})
	require.NoError(t, err, "New")
	k.Reset()

	c, err := j.Generate(addrLoopback4)
	require.NoError(t, err, "Generate")
	require.Equal(t, uint64(0x3999a50b0), c, "key survives caller Reset")
}
