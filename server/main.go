package main

import (
	"errors"
	"flag"
	"io"
	"log"

	"github.com/websmith/wsaccept/channel"
	"github.com/websmith/wsaccept/server/authenticators"
	"github.com/websmith/wsaccept/server/servers"
	"github.com/websmith/wsaccept/shared"
	"github.com/websmith/wsaccept/shared/cli"
)

var configFile = flag.String("config", "", "Config file to load")

func main() {
	flag.Usage = cli.UsageWithVersion
	flag.Parse()
	shared.PrintVersion()

	config := defaultConfig()
	if *configFile != "" {
		if err := shared.LoadConfigFile(*configFile, config); err != nil {
			log.Fatalf("cannot load config: %v", err)
		}
	}

	server := servers.New()
	server.ListenAddr = config.Server.Listen
	server.MaxClients = config.Server.MaxClients
	server.Protocols = config.Socket.Protocols
	server.ChannelOpts = channel.Options{
		MaxSendQueue:         config.Socket.MaxSendQueue,
		MaxMessageSize:       config.Socket.MaxMessageSize,
		MaxFrameSize:         config.Socket.MaxFrameSize,
		AcceptUnmaskedFrames: config.Socket.AcceptUnmaskedFrames,
	}
	server.Handler = echoHandler

	if config.Server.TLS.Certificate != "" {
		tlsConfig, err := shared.LoadTLSConfig(config.Server.TLS.Certificate, config.Server.TLS.Key, config.Server.TLS.ClientCA)
		if err != nil {
			log.Fatalf("cannot load TLS config: %v", err)
		}
		if config.Server.TLS.MinVersion != "" {
			minVersion, err := shared.TLSVersionNum(config.Server.TLS.MinVersion)
			if err != nil {
				log.Fatalf("cannot load TLS config: %v", err)
			}
			tlsConfig.MinVersion = minVersion
		}
		server.TLSConfig = tlsConfig
	}

	authenticator, err := authenticators.New(config.Server.Authenticator.Type)
	if err != nil {
		log.Fatalf("cannot create authenticator: %v", err)
	}
	if err := authenticator.Load(config.Server.Authenticator.Config); err != nil {
		log.Fatalf("cannot load authenticator: %v", err)
	}
	server.Authenticator = authenticator

	cli.RegisterShutdownSignals(func() {
		_ = server.Close()
	})

	if err := server.Listen(); err != nil {
		log.Fatalf("server terminated: %v", err)
	}
}

// echoHandler sends every data message straight back until the peer leaves.
func echoHandler(clientID string, logger *log.Logger, ch *channel.Channel) {
	defer ch.Close()

	for {
		msg, err := ch.Receive()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Printf("receive error: %v", err)
			}
			return
		}
		if !msg.IsData() {
			continue
		}
		if err := ch.Send(msg); err != nil {
			logger.Printf("send error: %v", err)
			return
		}
	}
}
