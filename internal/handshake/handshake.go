// handshake.go - Cookie handshake messages
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package handshake implements a minimal stateless two round trip datagram
// handshake gated by address cookies.
//
//	C -> S  HELLO                    (padded to HelloSize)
//	S -> C  COOKIE  cookie
//	C -> S  INIT    cookie  payload
//	S -> C  ACCEPT  reply
//
// The server keeps no state between HELLO and INIT, and only answers an INIT
// whose cookie proves the client received the COOKIE at its source address.
// A HELLO is never smaller than the COOKIE it elicits, so the server can not
// be used to amplify spoofed traffic.
package handshake

import (
	"encoding/binary"
	"errors"
	"time"

	"gitlab.com/yawning/cookiejar.git"
)

const (
	// MaxPacketSize is the largest datagram sent or accepted.
	MaxPacketSize = 4096

	// HelloSize is the minimum size of a HELLO datagram.
	HelloSize = cookieSize

	// MaxPayloadSize is the largest INIT payload or ACCEPT reply.
	MaxPayloadSize = MaxPacketSize - cookieSize

	headerSize = 5
	cookieSize = headerSize + 8

	readTimeout          = 250 * time.Millisecond
	defaultRetryInterval = time.Second

	// A cookie issued at the end of its bin is valid for one bin less than
	// ExpireTime.
	defaultCookieLifetime = cookiejar.ExpireTime - cookiejar.BinTime
)

type msgType byte

const (
	msgHello msgType = iota + 1
	msgCookie
	msgInit
	msgAccept
)

func (t msgType) String() string {
	switch t {
	case msgHello:
		return "HELLO"
	case msgCookie:
		return "COOKIE"
	case msgInit:
		return "INIT"
	case msgAccept:
		return "ACCEPT"
	default:
		return "UNKNOWN"
	}
}

var (
	magic = [4]byte{'C', 'J', 'H', '1'}

	// ErrMalformed is the error returned when a datagram is not a
	// handshake message.
	ErrMalformed = errors.New("handshake: malformed message")

	// ErrPayloadTooLarge is the error returned when a payload or reply
	// exceeds MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("handshake: payload too large")
)

type message struct {
	typ     msgType
	cookie  uint64
	payload []byte
}

func (m *message) marshal() []byte {
	var b []byte
	switch m.typ {
	case msgHello:
		b = make([]byte, HelloSize)
	case msgCookie:
		b = make([]byte, cookieSize)
	case msgInit:
		b = make([]byte, cookieSize, cookieSize+len(m.payload))
		b = append(b, m.payload...)
	default:
		b = make([]byte, headerSize, headerSize+len(m.payload))
		b = append(b, m.payload...)
	}

	copy(b[0:4], magic[:])
	b[4] = byte(m.typ)
	switch m.typ {
	case msgCookie, msgInit:
		binary.BigEndian.PutUint64(b[headerSize:], m.cookie)
	}
	return b
}

// unmarshal parses b.  The payload aliases b.
func unmarshal(b []byte) (*message, error) {
	if len(b) < headerSize || [4]byte(b[0:4]) != magic {
		return nil, ErrMalformed
	}

	m := &message{typ: msgType(b[4])}
	switch m.typ {
	case msgHello:
		if len(b) < HelloSize {
			return nil, ErrMalformed
		}
	case msgCookie, msgInit:
		if len(b) < cookieSize {
			return nil, ErrMalformed
		}
		m.cookie = binary.BigEndian.Uint64(b[headerSize:])
		if m.typ == msgInit {
			m.payload = b[cookieSize:]
		}
	case msgAccept:
		m.payload = b[headerSize:]
	default:
		return nil, ErrMalformed
	}
	return m, nil
}
