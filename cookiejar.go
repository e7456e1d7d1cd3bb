// cookiejar.go - Stateless address cookies
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package cookiejar implements stateless, time limited address cookies in the
// spirit of TCP SYN cookies.
//
// A server hands a peer a cookie bound to the peer's claimed address, and
// later checks that the peer echoed it back, proving that it can receive
// traffic at that address, without retaining any per-peer state.  Cookies
// expire after ExpireTime.
//
// The cookie is a 64 bit value: a 32 bit digest from a 6 round Salsa20 style
// keyed permutation over the key, address and current epoch, shifted left by
// 4, with the low 4 bits carrying the epoch bin.  The reduced round count
// trades strength for speed, which is acceptable for a token that lives for
// seconds.  It is NOT a general purpose MAC.
//
// This implementation is derived from the CookieJar in libcat by Christopher
// A. Taylor.
package cookiejar

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
)

// MaxAddressSize is the maximum size of an address in bytes, enough for an
// IPv6 address.  Longer identifiers must be hashed first, see Jar.AddrBytes.
const MaxAddressSize = 16

var (
	// ErrInvalidAddressLength is the error returned when an address is
	// longer than MaxAddressSize.
	ErrInvalidAddressLength = errors.New("cookiejar: invalid address length")

	// ErrInvalidSeedSize is the error thrown via a panic when a seed is an
	// invalid size.
	ErrInvalidSeedSize = errors.New("cookiejar: invalid seed size")

	// ErrUnsupportedAddr is the error returned when a net.Addr has no IP
	// address to extract.
	ErrUnsupportedAddr = errors.New("cookiejar: unsupported address")

	prehashInfo = []byte("cookiejar address prehash")

	defaultJar  *Jar
	defaultOnce sync.Once
)

// Config is the Jar configuration.  The zero value is valid.
type Config struct {
	// Key is the secret key.  If nil, a random key is generated.  The key
	// is copied, and the caller's copy may be Reset after New returns.
	Key *Key

	// Clock is the uptime source.  If nil, the monotonic clock is used,
	// starting when New is called.
	Clock Clock

	// Logger is the logger.  If nil, nothing is logged.
	Logger *zap.Logger

	// Metrics are the optional metrics.
	Metrics *Metrics
}

// Jar issues and verifies cookies.  It is safe for concurrent use, and
// immutable after construction.
type Jar struct {
	key        Key
	prehashKey [32]byte
	epoch      epochClock

	log     *zap.Logger
	metrics *Metrics
}

// New returns a new Jar.
func New(cfg *Config) (*Jar, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	j := &Jar{
		epoch:   epochClock{clock: cfg.Clock},
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}
	if j.epoch.clock == nil {
		j.epoch.clock = newMonotonicClock()
	}
	if j.log == nil {
		j.log = zap.NewNop()
	}

	if cfg.Key != nil {
		j.key = *cfg.Key
	} else {
		k, err := NewKey()
		if err != nil {
			return nil, err
		}
		j.key = *k
		k.Reset()
	}

	kdf := hkdf.New(sha256.New, j.key[:], nil, prehashInfo)
	if _, err := io.ReadFull(kdf, j.prehashKey[:]); err != nil {
		return nil, fmt.Errorf("cookiejar: failed to derive prehash key: %w", err)
	}

	j.log.Debug("cookie jar created",
		zap.Duration("expire", ExpireTime),
		zap.Int("bins", BinCount),
		zap.Bool("random_key", cfg.Key == nil),
	)

	return j, nil
}

// Generate returns a cookie bound to addr, which must be at most
// MaxAddressSize bytes.
func (j *Jar) Generate(addr []byte) (uint64, error) {
	if len(addr) > MaxAddressSize {
		j.metrics.invalidAddress()
		return 0, ErrInvalidAddressLength
	}

	epoch := j.epoch.now()
	cookie := pack(salsa6(&j.key, addr, epoch), epoch)
	j.metrics.generated()
	return cookie, nil
}

// Verify returns true iff cookie was issued by Generate for addr within the
// last ExpireTime.  A wrong address, tampering and expiry are deliberately
// indistinguishable.
func (j *Jar) Verify(addr []byte, cookie uint64) (bool, error) {
	if len(addr) > MaxAddressSize {
		j.metrics.invalidAddress()
		return false, ErrInvalidAddressLength
	}

	start := time.Now()
	epoch := j.epoch.reconstruct(unpackBin(cookie))
	expected := pack(salsa6(&j.key, addr, epoch), epoch)

	var a, b [8]byte
	binary.LittleEndian.PutUint64(a[:], expected)
	binary.LittleEndian.PutUint64(b[:], cookie)
	ok := subtle.ConstantTimeCompare(a[:], b[:]) == 1

	j.metrics.verified(ok, time.Since(start))
	if !ok {
		j.log.Debug("cookie rejected")
	}
	return ok, nil
}

// GenerateAddr returns a cookie bound to the address of addr.
func (j *Jar) GenerateAddr(addr net.Addr) (uint64, error) {
	b, err := j.AddrBytes(addr)
	if err != nil {
		return 0, err
	}
	return j.Generate(b)
}

// VerifyAddr verifies a cookie against the address of addr.
func (j *Jar) VerifyAddr(addr net.Addr, cookie uint64) (bool, error) {
	b, err := j.AddrBytes(addr)
	if err != nil {
		return false, err
	}
	return j.Verify(b, cookie)
}

// String implements fmt.Stringer without revealing the key material.
func (j *Jar) String() string {
	return "cookiejar.Jar{key: [redacted]}"
}

// Format implements fmt.Formatter without revealing the key material.
func (j *Jar) Format(f fmt.State, verb rune) {
	_, _ = io.WriteString(f, j.String())
}

func pack(digest, epoch uint32) uint64 {
	return uint64(digest)<<binBits | uint64(epoch&BinMask)
}

func unpackBin(cookie uint64) uint32 {
	return uint32(cookie & BinMask)
}

// Default returns the process wide Jar, creating it on first use.  It panics
// if no random key can be generated.
func Default() *Jar {
	defaultOnce.Do(func() {
		j, err := New(nil)
		if err != nil {
			panic(err)
		}
		defaultJar = j
	})
	return defaultJar
}

// Generate returns a cookie bound to addr from the Default Jar.
func Generate(addr []byte) (uint64, error) {
	return Default().Generate(addr)
}

// Verify verifies a cookie issued by Generate.
func Verify(addr []byte, cookie uint64) (bool, error) {
	return Default().Verify(addr, cookie)
}
