package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/gobwas/ws"

	"github.com/websmith/wsaccept/channel"
	"github.com/websmith/wsaccept/shared/cli"
	"github.com/websmith/wsaccept/shared/handoff"
)

var connectAddr = flag.String("connect", "ws://127.0.0.1:9000", "Server address to connect to")
var protocols = flag.String("protocols", "", "Comma-separated subprotocols to offer")
var message = flag.String("message", "hello", "Text message to send")

func main() {
	flag.Usage = cli.UsageWithVersion
	flag.Parse()

	dialer := ws.Dialer{}
	if *protocols != "" {
		dialer.Protocols = strings.Split(*protocols, ",")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, br, hs, err := dialer.Dial(ctx, *connectAddr)
	if err != nil {
		log.Fatalf("dial %s: %v", *connectAddr, err)
	}

	ch := channel.NewClient(handoff.Hijacked(conn, br), hs.Protocol, channel.Options{})
	log.Printf("connected (subprotocol %q)", ch.Protocol())

	if err := ch.Send(channel.Text(*message)); err != nil {
		log.Fatalf("send: %v", err)
	}

	reply, err := ch.Receive()
	if err != nil {
		log.Fatalf("receive: %v", err)
	}
	log.Printf("received: %s", reply.Payload)

	if err := ch.Close(); err != nil {
		log.Fatalf("close: %v", err)
	}
}
