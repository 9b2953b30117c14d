package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/warden/console/internal/app"
	"github.com/warden/console/internal/client"
	"github.com/warden/console/internal/config"
	"github.com/warden/console/internal/session"
)

const usage = `Usage: warden-console [flags] [command]

Commands:
  admin      verify the stored token and open the admin console (default)
  dashboard  open the user dashboard
  login      open the login form
  register   open the registration form
  logout     delete the stored token and exit

Flags:
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.DefaultPath(), "Path to the YAML config file")
	apiURL := flag.String("url", "", "API base URL, e.g. https://warden.example.com (overrides config)")
	token := flag.String("token", "", "Bearer token; stored for later runs")
	alert := flag.String("alert", "", "Show a warning notification at startup")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	command := flag.Arg(0)
	start, err := startMode(command)
	if err != nil {
		flag.Usage()
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	closeLog, err := setupLogging(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := session.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	ctx := context.Background()
	if command == "logout" {
		if err := session.Logout(ctx, store, &client.Session{}); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	}

	sess, err := loadSession(ctx, store, *token, cfg.Token)
	if err != nil {
		return err
	}
	lastLogin, _, err := store.LastLogin(ctx)
	if err != nil {
		slog.Warn("read last login", "err", err)
	}

	slog.Info("starting", "api", cfg.APIBase(), "mode", command, "authenticated", sess.Authenticated())

	m := app.New(app.Options{
		HTTP:      client.NewHTTPClient(cfg.APIBase(), sess, cfg.HTTPTimeout),
		Session:   sess,
		Store:     store,
		Events:    client.NewSSEClient(cfg.SecurityStreamURL(), sess, cfg.Reconnect),
		Health:    client.NewWSClient(client.KindHealthMetric, cfg.HealthURL(), sess, cfg.Reconnect),
		Traffic:   client.NewWSClient(client.KindTrafficSample, cfg.TrafficURL(), sess, cfg.Reconnect),
		Start:     start,
		ToastTTL:  cfg.ToastTTL,
		Alert:     *alert,
		LastLogin: lastLogin,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// startMode maps a command to the first screen.
func startMode(command string) (app.Mode, error) {
	switch command {
	case "", "admin":
		return app.ModeGate, nil
	case "dashboard":
		return app.ModeLanding, nil
	case "login", "logout":
		return app.ModeLogin, nil
	case "register":
		return app.ModeRegister, nil
	}
	return 0, fmt.Errorf("unknown command %q", command)
}

// loadSession picks the token: the flag (which is also stored), then the
// config, then whatever an earlier run stored.
func loadSession(ctx context.Context, store *session.Store, flagToken, cfgToken string) (*client.Session, error) {
	switch {
	case flagToken != "":
		if err := store.SaveToken(ctx, flagToken); err != nil {
			return nil, err
		}
		return client.NewSession(flagToken), nil
	case cfgToken != "":
		return client.NewSession(cfgToken), nil
	}
	tok, err := store.Token(ctx)
	if err != nil {
		return nil, err
	}
	return client.NewSession(tok), nil
}

// setupLogging sends slog output to path; the terminal belongs to the UI.
func setupLogging(path, level string) (func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})))
	return func() { f.Close() }, nil //nolint:errcheck
}
