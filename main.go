package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/ergsync/lib/myconfig"
	"github.com/MarcGrol/ergsync/lib/myhttpclient"
	"github.com/MarcGrol/ergsync/lib/mylog"
	"github.com/MarcGrol/ergsync/lib/myuuid"
	"github.com/MarcGrol/ergsync/services/forwarder"
	"github.com/MarcGrol/ergsync/services/warmup"
)

func main() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := myconfig.LoadServer()
	if err != nil {
		log.Fatalf("Error loading configuration: %s", err)
	}

	err = mylog.Configure(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Error configuring logging: %s", err)
	}
	logger := mylog.New("main")

	missing := cfg.Missing()
	for _, name := range missing {
		logger.Log(c, "", mylog.SeverityWarn, "%s is not set: token requests will fail with 500", name)
	}

	router := mux.NewRouter()
	sender := myhttpclient.New(cfg.HTTPTimeout)
	uuider := myuuid.RealUUIDer{}

	forwarder.NewService(forwarder.ConfigFromServer(*cfg), sender, uuider).RegisterEndpoints(c, router)
	warmup.NewService(missing, uuider).RegisterEndpoints(c, router)

	err = startWebServerBlocking(c, logger, cfg.Port, router)
	if err != nil {
		log.Fatalf("Error running webserver on port %s: %s", cfg.Port, err)
	}
}

func startWebServerBlocking(c context.Context, logger mylog.Logger, port string, router *mux.Router) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-c.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			logger.Log(shutdownCtx, "", mylog.SeverityError, "Error shutting down webserver: %s", err)
		}
	}()

	logger.Log(c, "", mylog.SeverityInfo, "Starting webserver on port %s (try http://localhost:%s%s)", port, port, forwarder.ProxyPath)
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
