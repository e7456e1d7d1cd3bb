// client.go - Cookie handshake client
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package handshake

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
)

// ClientConfig is the client configuration.
type ClientConfig struct {
	// RetryInterval is how long to wait for a response before resending
	// a request.  Defaults to one second.
	RetryInterval time.Duration

	// CookieLifetime is how long a cookie is presented before a fresh one
	// is requested.  Defaults to the shortest time a cookie is guaranteed
	// to remain valid.
	CookieLifetime time.Duration

	// Logger is the logger.  If nil, nothing is logged.
	Logger *zap.Logger
}

// Client performs handshakes with a single server.  It is not safe for
// concurrent use.
type Client struct {
	conn     net.PacketConn
	server   net.Addr
	retry    time.Duration
	lifetime time.Duration
	log      *zap.Logger
	buf      []byte
}

// NewClient returns a Client talking to server over conn.
func NewClient(conn net.PacketConn, server net.Addr, cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	c := &Client{
		conn:     conn,
		server:   server,
		retry:    cfg.RetryInterval,
		lifetime: cfg.CookieLifetime,
		log:      cfg.Logger,
		buf:      make([]byte, MaxPacketSize),
	}
	if c.retry <= 0 {
		c.retry = defaultRetryInterval
	}
	if c.lifetime <= 0 {
		c.lifetime = defaultCookieLifetime
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Handshake obtains a cookie, presents it along with payload, and returns
// the cookie and the server's reply.  Lost datagrams are resent every retry
// interval until ctx is done, and a new cookie is obtained when the current
// one reaches the end of its lifetime.
func (c *Client) Handshake(ctx context.Context, payload []byte) (uint64, []byte, error) {
	if len(payload) > MaxPayloadSize {
		return 0, nil, ErrPayloadTooLarge
	}

	for {
		resp, err := c.exchange(ctx, &message{typ: msgHello}, msgCookie)
		if err != nil {
			return 0, nil, fmt.Errorf("handshake: waiting for cookie: %w", err)
		}
		cookie := resp.cookie
		c.log.Debug("received cookie", zap.Stringer("server", c.server), zap.Uint64("cookie", cookie))

		initCtx, cancel := context.WithTimeout(ctx, c.lifetime)
		resp, err = c.exchange(initCtx, &message{typ: msgInit, cookie: cookie, payload: payload}, msgAccept)
		cancel()
		switch {
		case err == nil:
			return cookie, append([]byte{}, resp.payload...), nil
		case ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded):
			c.log.Debug("cookie expired", zap.Stringer("server", c.server), zap.Uint64("cookie", cookie))
			continue
		default:
			return cookie, nil, fmt.Errorf("handshake: waiting for accept: %w", err)
		}
	}
}

func (c *Client) exchange(ctx context.Context, req *message, want msgType) (*message, error) {
	b := req.marshal()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := c.conn.WriteTo(b, c.server); err != nil {
			return nil, err
		}

		deadline := time.Now().Add(c.retry)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}

		resp, err := c.read(want)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			c.log.Debug("resending", zap.Stringer("server", c.server), zap.Stringer("type", req.typ))
			continue
		}
		return resp, err
	}
}

// read returns the first message of type want from the server, skipping
// anything else, until the read deadline.
func (c *Client) read(want msgType) (*message, error) {
	for {
		n, from, err := c.conn.ReadFrom(c.buf)
		if err != nil {
			return nil, err
		}
		if from.String() != c.server.String() {
			continue
		}
		msg, err := unmarshal(c.buf[:n])
		if err != nil || msg.typ != want {
			continue
		}
		return msg, nil
	}
}
