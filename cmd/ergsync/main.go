package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MarcGrol/ergsync/lib/myconfig"
	"github.com/MarcGrol/ergsync/lib/mylog"
	"github.com/MarcGrol/ergsync/services/session"
)

func main() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := myconfig.LoadClient()
	if err != nil {
		log.Fatalf("Error loading configuration: %s", err)
	}

	err = mylog.Configure(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Error configuring logging: %s", err)
	}

	a, cleanup, err := newApp(c, *cfg, os.Stdout)
	if err != nil {
		log.Fatalf("Error initializing: %s", err)
	}

	err = a.run(c, os.Args[1:])
	cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		if session.NeedsReauth(err) {
			fmt.Fprintf(os.Stderr, "run 'ergsync auth-url' and 'ergsync login -code <code>' to reconnect\n")
			os.Exit(2)
		}
		os.Exit(1)
	}
}
