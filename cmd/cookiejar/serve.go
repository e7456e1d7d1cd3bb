// serve.go - serve command
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/yawning/cookiejar.git"
	"gitlab.com/yawning/cookiejar.git/internal/handshake"
)

type serveCommand struct {
	Listen      string  `short:"l" long:"listen" description:"UDP address to answer handshakes on" default:"127.0.0.1:4242"`
	Metrics     string  `long:"metrics" description:"HTTP address to serve Prometheus metrics on, disabled if empty"`
	CookieRate  float64 `long:"cookie-rate" description:"Maximum COOKIE replies per second, 0 for unlimited" default:"1000"`
	CookieBurst int64   `long:"cookie-burst" description:"Maximum burst of COOKIE replies" default:"100"`
	Seed        string  `long:"seed" description:"Hex encoded 32 byte seed for a deterministic key, random if empty"`
}

func (c *serveCommand) Execute(args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	key, err := keyFromSeed(c.Seed)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	jar, err := cookiejar.New(&cookiejar.Config{
		Key:     key,
		Logger:  log.Named("jar"),
		Metrics: cookiejar.NewMetrics(reg),
	})
	if key != nil {
		key.Reset()
	}
	if err != nil {
		return err
	}

	conn, err := net.ListenPacket("udp", c.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	defer conn.Close()

	srv, err := handshake.NewServer(conn, &handshake.ServerConfig{
		Jar:         jar,
		Logger:      log.Named("handshake"),
		CookieRate:  c.CookieRate,
		CookieBurst: c.CookieBurst,
		Handler: func(peer net.Addr, payload []byte) []byte {
			return append([]byte{}, payload...)
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		hs := &http.Server{Addr: c.Metrics, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("serving metrics", zap.String("addr", c.Metrics))
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer hs.Close()
	}

	err = srv.Serve(ctx)
	log.Info("shutting down")
	return err
}
