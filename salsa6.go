// salsa6.go - Reduced round Salsa20 style keyed permutation
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cookiejar

import (
	"encoding/binary"
	"math/bits"
)

const (
	salsaStateSize = 16
	salsaRounds    = 6 // 3 double rounds.

	// State words 4..7 absorb the peer address, 6 and 10 the epoch.
	addrWord   = 4
	epochWord0 = 6
	epochWord1 = 10
)

type salsaState [salsaStateSize]uint32

// salsaOp is one step of the permutation:
//
//	x[t] ^= ROTL32(x[a] + x[b], r)
type salsaOp struct {
	t, a, b uint8
	r       int
}

// salsaSchedule is a single double round, applied salsaRounds/2 times.  The
// first 16 steps mix the columns, the last 16 the rows.
var salsaSchedule = [32]salsaOp{
	{4, 0, 12, 7}, {8, 4, 0, 9}, {12, 8, 4, 13}, {0, 12, 8, 18},
	{9, 5, 1, 7}, {13, 9, 5, 9}, {1, 13, 9, 13}, {5, 1, 13, 18},
	{14, 10, 6, 7}, {2, 14, 10, 9}, {6, 2, 14, 13}, {10, 6, 2, 18},
	{3, 15, 11, 7}, {7, 3, 15, 9}, {11, 7, 3, 13}, {15, 11, 7, 18},

	{1, 0, 3, 7}, {2, 1, 0, 9}, {3, 2, 1, 13}, {0, 3, 2, 18},
	{6, 5, 4, 7}, {7, 6, 5, 9}, {4, 7, 6, 13}, {5, 4, 7, 18},
	{11, 10, 9, 7}, {8, 11, 10, 9}, {9, 8, 11, 13}, {10, 9, 8, 18},
	{12, 15, 14, 7}, {13, 12, 15, 9}, {14, 13, 12, 13}, {15, 14, 13, 18},
}

// init loads the key, then the address and epoch into the state.
//
// All words are little endian.  The address overwrites the leading bytes of
// key words 4..7, and any bytes past the end of the address remain key
// material, so an address and its zero extension load differently.
func (s *salsaState) init(key *Key, addr []byte, epoch uint32) {
	for i := range s {
		s[i] = binary.LittleEndian.Uint32(key[i*4:])
	}

	var buf [MaxAddressSize]byte
	copy(buf[:], key[addrWord*4:])
	copy(buf[:], addr)
	for i := 0; i < MaxAddressSize/4; i++ {
		s[addrWord+i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	burnBytes(buf[:])

	s[epochWord0] += epoch
	s[epochWord1] += epoch
}

func (s *salsaState) permute() {
	for i := salsaRounds; i > 0; i -= 2 {
		for _, op := range salsaSchedule {
			s[op.t] ^= bits.RotateLeft32(s[op.a]+s[op.b], op.r)
		}
	}
}

func (s *salsaState) digest() uint32 {
	return s[0] ^ s[5] ^ s[10] ^ s[15]
}

// salsa6 folds the key, address and epoch into a 32 bit digest.  len(addr)
// MUST be at most MaxAddressSize.
//
// Six rounds is nowhere near enough for general purpose use, the output is
// only expected to survive for ExpireTime.
func salsa6(key *Key, addr []byte, epoch uint32) uint32 {
	var s salsaState
	s.init(key, addr, epoch)
	s.permute()
	d := s.digest()

	// Purge the state off the stack.
	burnUint32s(s[:])

	return d
}
