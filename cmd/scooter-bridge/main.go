// Command scooter-bridge is the long-running bridge daemon (spec §1, §6):
// it exposes the JSON-RPC surface over stdio "native messaging" and over
// an HTTP/WebSocket loopback, and hosts the in-process guest registry the
// extension drives through that surface.
//
// Structure follows the teacher's cmd/scooter/main.go: an app-data
// directory resolved from an env override or the OS config dir, a logger
// opened inside it, config/profile stores loaded from it, the daemon's
// components wired together, and a dual-listener startup with
// signal-driven graceful shutdown.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcp-scooter/bridge/internal/config"
	"github.com/mcp-scooter/bridge/internal/controlplane"
	"github.com/mcp-scooter/bridge/internal/guest"
	"github.com/mcp-scooter/bridge/internal/hostrpc"
	"github.com/mcp-scooter/bridge/internal/llm"
	"github.com/mcp-scooter/bridge/internal/logger"
	"github.com/mcp-scooter/bridge/internal/profilecfg"
	"github.com/mcp-scooter/bridge/internal/pump"
	"github.com/mcp-scooter/bridge/internal/registry"
	"github.com/mcp-scooter/bridge/internal/secrets"
	"github.com/mcp-scooter/bridge/internal/stream"
	"github.com/mcp-scooter/bridge/internal/tools"
	"github.com/mcp-scooter/bridge/internal/transport"
)

// appDataDir resolves the daemon's working directory: SCOOTER_BRIDGE_DIR
// if set, else $XDG config dir / "harbor" (mirrors the teacher's
// SCOOTER_CONFIG_DIR override over os.UserConfigDir()/mcp-scooter).
func appDataDir() (string, error) {
	if dir := os.Getenv("SCOOTER_BRIDGE_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "harbor"), nil
}

func main() {
	var stdioMode bool

	root := &cobra.Command{
		Use:   "scooter-bridge",
		Short: "Run the browser-extension bridge daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(stdioMode)
		},
	}
	root.Flags().BoolVar(&stdioMode, "stdio", false, "also run a native-messaging session on stdin/stdout")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scooter-bridge:", err)
		os.Exit(1)
	}
}

func run(stdio bool) error {
	dir, err := appDataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create app data dir: %w", err)
	}

	log, err := logger.New(dir)
	if err != nil {
		return fmt.Errorf("open logger: %w", err)
	}
	defer log.Close()

	profileStore := profilecfg.NewStore(
		filepath.Join(dir, "profiles.yaml"),
		filepath.Join(dir, "settings.yaml"),
	)
	profiles, settings, err := profileStore.Load()
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	log.Add("info", "", fmt.Sprintf("loaded %d profile(s)", len(profiles)))

	modelCfg, err := config.New(filepath.Join(dir, "llm.json")).Load()
	if err != nil {
		return fmt.Errorf("load model config: %w", err)
	}

	secretStore := secrets.NewStore("bridge")
	providers := buildProviders(modelCfg, secretStore)

	reg := registry.New(pump.Config{
		Console: func(guestID string, entries []guest.ConsoleEntry) {
			for _, e := range entries {
				log.Add(e.Level, guestID, e.Message)
			}
		},
	}, 10*time.Minute)
	defer reg.Close()

	arb := tools.New(reg, 0, 0)
	toolReg := tools.NewToolRegistry()
	forwarder := stream.New(providers)

	// newSession builds a Session whose host_request frames go out over
	// whatever FrameIO ends up attached. The router's Sender reads
	// session.IO lazily so the same constructor works for stdio (IO set up
	// front by RunStdio) and for the HTTP server's WebSocket upgrade (IO
	// set after the dispatcher/router already exist, per HTTPServer.handleWS).
	newSession := func() *transport.Session {
		session := &transport.Session{}
		router := hostrpc.New(func(f hostrpc.Frame) error {
			if session.IO == nil {
				return fmt.Errorf("no host transport attached")
			}
			return session.IO.WriteMessage(transport.Message{
				Type:    transport.TypeHostRequest,
				ID:      f.ID,
				Method:  f.Method,
				Params:  mustJSON(f.Params),
				Context: f.Context,
			})
		}, 30*time.Second)
		router.OnOrphan(func(id string) {
			log.Add("warn", "", "orphan host_response: "+id)
		})
		session.Router = router
		session.Dispatcher = transport.BuildDispatcher(reg, arb, forwarder, router, toolReg)
		return session
	}

	httpServer := &transport.HTTPServer{
		StartedAt:       time.Now(),
		BuildDispatcher: newSession,
	}

	gateway := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", settings.BridgePort),
		Handler: httpServer.Handler(),
	}

	control := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", settings.ControlPort),
		Handler: controlplane.New(reg, arb, toolReg, log, profileStore, settings),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 3)
	go func() {
		log.Add("info", "", fmt.Sprintf("gateway listening on %s", gateway.Addr))
		if err := gateway.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("gateway: %w", err)
		}
	}()
	go func() {
		log.Add("info", "", fmt.Sprintf("control plane listening on %s", control.Addr))
		if err := control.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("control plane: %w", err)
		}
	}()

	if stdio {
		go func() {
			err := transport.RunStdio(ctx, os.Stdin, os.Stdout, func(io transport.FrameIO) *transport.Session {
				session := newSession()
				session.IO = io
				return session
			})
			if err != nil && err != transport.ErrShutdown {
				errCh <- fmt.Errorf("stdio session: %w", err)
			} else {
				errCh <- nil
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		log.Add("info", "", "shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Add("error", "", err.Error())
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	control.Shutdown(shutdownCtx)
	return gateway.Shutdown(shutdownCtx)
}

func buildProviders(cfg config.Config, store secrets.Store) *llm.Registry {
	reg := llm.NewRegistry()
	for _, p := range cfg.Providers {
		if !p.Enabled {
			continue
		}
		apiKey := p.APIKey
		if apiKey == "" {
			if k, err := store.Get(p.ID); err == nil {
				apiKey = k
			}
		}
		reg.Register(p.Type, &llm.OpenAICompatible{
			BaseURL:    p.BaseURL,
			HTTPClient: &http.Client{Timeout: 60 * time.Second},
			APIKey:     apiKey,
		})
	}
	return reg
}

func mustJSON(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
