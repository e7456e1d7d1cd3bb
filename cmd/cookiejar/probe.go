// probe.go - probe command
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"gitlab.com/yawning/cookiejar.git/internal/handshake"
)

type probeCommand struct {
	Server  string        `short:"s" long:"server" description:"UDP address of the handshake server" default:"127.0.0.1:4242"`
	Payload string        `short:"p" long:"payload" description:"INIT payload" default:"ping"`
	Timeout time.Duration `long:"timeout" description:"Give up after this long" default:"5s"`
	Retry   time.Duration `long:"retry" description:"Resend unanswered requests after this long" default:"1s"`
}

func (c *probeCommand) Execute(args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	server, err := net.ResolveUDPAddr("udp", c.Server)
	if err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	defer conn.Close()

	client := handshake.NewClient(conn, server, &handshake.ClientConfig{
		RetryInterval: c.Retry,
		Logger:        log.Named("handshake"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	start := time.Now()
	cookie, reply, err := client.Handshake(ctx, []byte(c.Payload))
	if err != nil {
		return err
	}
	log.Info("handshake complete",
		zap.Stringer("server", server),
		zap.String("cookie", fmt.Sprintf("%#x", cookie)),
		zap.Duration("rtt", time.Since(start)),
	)
	fmt.Printf("%s\n", reply)
	return nil
}
