// server.go - Cookie handshake server
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package handshake

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/juju/ratelimit"
	"go.uber.org/zap"

	"gitlab.com/yawning/cookiejar.git"
)

// Handler produces the ACCEPT reply for a verified INIT.  payload is only
// valid for the duration of the call.
type Handler func(peer net.Addr, payload []byte) []byte

// ServerConfig is the server configuration.
type ServerConfig struct {
	// Jar issues and verifies the cookies.  If nil, a new Jar with a
	// random key is created.
	Jar *cookiejar.Jar

	// Handler is called for every verified INIT.  If nil, the ACCEPT
	// reply is empty.
	Handler Handler

	// Logger is the logger.  If nil, nothing is logged.
	Logger *zap.Logger

	// CookieRate limits the COOKIE replies per second, with bursts of up
	// to CookieBurst.  If CookieRate is 0, replies are not limited.
	CookieRate  float64
	CookieBurst int64
}

// Server is a stateless handshake responder.
type Server struct {
	conn    net.PacketConn
	jar     *cookiejar.Jar
	handler Handler
	bucket  *ratelimit.Bucket
	log     *zap.Logger
}

// NewServer returns a Server answering on conn.
func NewServer(conn net.PacketConn, cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		cfg = &ServerConfig{}
	}

	s := &Server{
		conn:    conn,
		jar:     cfg.Jar,
		handler: cfg.Handler,
		log:     cfg.Logger,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.jar == nil {
		jar, err := cookiejar.New(&cookiejar.Config{Logger: s.log})
		if err != nil {
			return nil, err
		}
		s.jar = jar
	}
	if cfg.CookieRate > 0 {
		burst := cfg.CookieBurst
		if burst < 1 {
			burst = 1
		}
		s.bucket = ratelimit.NewBucketWithRate(cfg.CookieRate, burst)
	}
	return s, nil
}

// Addr returns the local address of the server.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Serve answers handshakes until ctx is done or the connection fails.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("serving handshakes", zap.Stringer("addr", s.Addr()))

	buf := make([]byte, MaxPacketSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := s.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return err
		}
		n, peer, err := s.conn.ReadFrom(buf)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			continue
		}
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.handle(peer, buf[:n])
	}
}

func (s *Server) handle(peer net.Addr, b []byte) {
	msg, err := unmarshal(b)
	if err != nil {
		s.log.Debug("dropping datagram", zap.Stringer("peer", peer), zap.Error(err))
		return
	}

	switch msg.typ {
	case msgHello:
		if s.bucket != nil && s.bucket.TakeAvailable(1) == 0 {
			s.log.Debug("throttling cookie reply", zap.Stringer("peer", peer))
			return
		}
		cookie, err := s.jar.GenerateAddr(peer)
		if err != nil {
			s.log.Warn("failed to generate cookie", zap.Stringer("peer", peer), zap.Error(err))
			return
		}
		s.send(peer, &message{typ: msgCookie, cookie: cookie})
	case msgInit:
		ok, err := s.jar.VerifyAddr(peer, msg.cookie)
		if err != nil || !ok {
			s.log.Debug("rejecting init", zap.Stringer("peer", peer))
			return
		}
		var reply []byte
		if s.handler != nil {
			reply = s.handler(peer, msg.payload)
		}
		if len(reply) > MaxPayloadSize {
			s.log.Warn("dropping oversized reply", zap.Stringer("peer", peer), zap.Int("len", len(reply)))
			return
		}
		s.log.Info("accepted handshake", zap.Stringer("peer", peer))
		s.send(peer, &message{typ: msgAccept, payload: reply})
	default:
		s.log.Debug("dropping unexpected message", zap.Stringer("peer", peer), zap.Stringer("type", msg.typ))
	}
}

func (s *Server) send(peer net.Addr, msg *message) {
	if _, err := s.conn.WriteTo(msg.marshal(), peer); err != nil {
		s.log.Warn("failed to send", zap.Stringer("peer", peer), zap.Stringer("type", msg.typ), zap.Error(err))
	}
}
