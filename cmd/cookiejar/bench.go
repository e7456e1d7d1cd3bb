// bench.go - bench command
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package main

import (
	"fmt"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"gitlab.com/yawning/cookiejar.git"
)

type benchCommand struct {
	Duration time.Duration `short:"d" long:"duration" description:"How long to run" default:"1s"`
	Workers  int           `short:"w" long:"workers" description:"Number of goroutines, GOMAXPROCS if 0"`
	Address  string        `short:"a" long:"address" description:"Peer IP address to bind cookies to" default:"192.0.2.1"`
}

func (c *benchCommand) Execute(args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ip := net.ParseIP(c.Address)
	if ip == nil {
		return fmt.Errorf("invalid address: %q", c.Address)
	}
	addr, err := cookiejar.AddrBytes(&net.IPAddr{IP: ip})
	if err != nil {
		return err
	}

	jar, err := cookiejar.New(&cookiejar.Config{Logger: log.Named("jar")})
	if err != nil {
		return err
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		wg       sync.WaitGroup
		ops      atomic.Uint64
		failures atomic.Uint64
	)
	deadline := time.Now().Add(c.Duration)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				cookie, err := jar.Generate(addr)
				if err != nil {
					failures.Add(1)
					continue
				}
				if ok, err := jar.Verify(addr, cookie); err != nil || !ok {
					failures.Add(1)
				}
				ops.Add(1)
			}
		}()
	}
	wg.Wait()

	n := ops.Load()
	log.Info("benchmark complete",
		zap.Int("workers", workers),
		zap.Uint64("round_trips", n),
		zap.Uint64("failures", failures.Load()),
		zap.Float64("round_trips_per_second", float64(n)/c.Duration.Seconds()),
	)
	if f := failures.Load(); f != 0 {
		return fmt.Errorf("%d verifications failed", f)
	}
	return nil
}
