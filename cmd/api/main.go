package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-dialer/internal/audit"
	"contact-dialer/internal/auth"
	"contact-dialer/internal/calls"
	"contact-dialer/internal/config"
	"contact-dialer/internal/directory"
	"contact-dialer/internal/httpapi"
	"contact-dialer/internal/operator"
	"contact-dialer/internal/telephony"
	"contact-dialer/pkg/logger"
	"contact-dialer/pkg/retry"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	modeServer      = "server"
	modeInteractive = "interactive"
	modeStatic      = "static"

	eventLogSize = 200
)

func main() {
	mode := flag.String("mode", modeServer, "server, interactive or static")
	mintSubject := flag.String("mint-token", "", "print an operator access token for this subject and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn(".env not loaded", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	if err := requireForMode(cfg, *mode); err != nil {
		slog.Error("config load failed", "mode", *mode, "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if *mintSubject != "" {
		if err := mintToken(cfg, *mintSubject); err != nil {
			log.Error("mint token failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	rootCtx = logger.With(rootCtx, log)

	provider, err := telephony.NewTwilioProvider(cfg.Twilio)
	if err != nil {
		log.Error("twilio init failed", "err", err)
		os.Exit(1)
	}

	var contacts directory.Source
	if cfg.DirectoryEnabled() {
		gc, err := directory.NewGraphClient(cfg.Directory, directory.Options{})
		if err != nil {
			log.Error("directory init failed", "err", err)
			os.Exit(1)
		}
		contacts = gc
	}

	var operatorMW gin.HandlerFunc
	if cfg.Auth.JWTSecret != "" {
		m, err := auth.NewManager(cfg.Auth)
		if err != nil {
			log.Error("auth init failed", "err", err)
			os.Exit(1)
		}
		operatorMW = auth.RequireOperatorToken(m)
	}

	events := audit.NewService(audit.NewMemoryRepo(eventLogSize))
	svc := newCallService(cfg, provider, events)

	r := newRouter(log, httpapi.Handlers{
		Calls:      svc,
		Contacts:   contacts,
		Events:     events,
		MessageURL: cfg.WebhookURL("/message"),
	}, operatorMW)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Placement may block for attempts x delay.
		WriteTimeout: 30*time.Second + time.Duration(cfg.Retry.MaxAttempts)*cfg.Retry.Delay,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "mode", *mode, "webhook_base", cfg.App.PublicBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	if *mode != modeServer {
		console := &operator.Console{Contacts: contacts, Dialer: svc, In: os.Stdin, Out: color.Output}
		go func() {
			// The server keeps running so webhooks for the placed call are answered.
			if _, err := runConsole(rootCtx, console, *mode, cfg.Twilio.TargetNumber); err != nil {
				log.Error("console call failed", "mode", *mode, "err", err)
				stop()
			}
		}()
	}

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

func requireForMode(cfg config.Config, mode string) error {
	switch mode {
	case modeServer:
		return nil
	case modeInteractive:
		return cfg.RequireDirectory()
	case modeStatic:
		return cfg.RequireTarget()
	default:
		return fmt.Errorf("unknown mode %q (want server, interactive or static)", mode)
	}
}

func runConsole(ctx context.Context, c *operator.Console, mode, target string) (string, error) {
	if mode == modeStatic {
		return c.RunStatic(ctx, target)
	}
	return c.RunInteractive(ctx)
}

func mintToken(cfg config.Config, subject string) error {
	m, err := auth.NewManager(cfg.Auth)
	if err != nil {
		return err
	}
	tok, err := m.Issue(time.Now(), subject)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

// newCallService wires the call state machine around a telephony provider.
func newCallService(cfg config.Config, provider telephony.Provider, events *audit.Service) *calls.Service {
	store := calls.NewStore()
	initiator := calls.NewInitiator(provider, store, calls.InitiatorOptions{
		From:      cfg.SourceNumber(),
		VoiceURL:  cfg.WebhookURL("/voice"),
		StatusURL: cfg.WebhookURL("/status"),
		Policy:    retry.Fixed(cfg.Retry.MaxAttempts, cfg.Retry.Delay),
	})
	return calls.NewService(initiator, provider, store, calls.ServiceOptions{
		Playback:   calls.Playback{AudioURL: cfg.Playback.AudioURL, Prompt: cfg.Playback.Prompt},
		MessageURL: cfg.WebhookURL("/message"),
		Events:     events,
	})
}
