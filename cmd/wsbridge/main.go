// wsbridge fans lines read from stdin out to websocket peers through a
// current-value subject: every line becomes the subject's value, peers that
// connect late immediately receive the most recent one. EOF on stdin
// finishes the stream and shuts the servers down. An optional TCP listener
// serves the same stream length-prefixed for peers without websocket.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/snayrouz/combine-go/internal/logging"
	"github.com/snayrouz/combine-go/pkg/rs"
	"github.com/snayrouz/combine-go/pkg/subject"
	"github.com/snayrouz/combine-go/pkg/transport"
	"github.com/snayrouz/combine-go/pkg/transport/tcp"
	"github.com/snayrouz/combine-go/pkg/transport/ws"
)

type config struct {
	Addr     string `default:":4567"`
	TCPAddr  string `split_words:"true" default:""`
	LogLevel string `split_words:"true" default:"info"`
}

func main() {
	var cfg config
	if err := envconfig.Process("bridge", &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	subj := subject.NewCurrentValue([]byte("ready"))

	servers := []transport.Server{}
	wsServer, err := ws.Listen(cfg.Addr, subj, logger)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}
	servers = append(servers, wsServer)
	logger.Info("bridge listening", zap.String("addr", cfg.Addr))

	if cfg.TCPAddr != "" {
		tcpServer, err := tcp.Listen(cfg.TCPAddr, subj, logger)
		if err != nil {
			logger.Fatal("listen tcp", zap.Error(err))
		}
		servers = append(servers, tcpServer)
		logger.Info("bridge listening tcp", zap.String("addr", cfg.TCPAddr))
	}

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			subj.Send(line)
		}
		subj.SendCompletion(rs.Finished())
		for _, s := range servers {
			s.Shutdown()
		}
	}()

	for _, s := range servers[1:] {
		go s.Serve()
	}
	if err := servers[0].Serve(); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
	for _, s := range servers {
		s.AwaitShutdown()
	}
}
