// Package wasmtool is the optional WASM guest backend (spec §4.9): it runs
// a compiled WebAssembly module as a guest using wazero instead of goja, for
// tool authors who ship a binary rather than JS source. A Worker satisfies
// the same Submit/Stop shape internal/registry already depends on for
// in-process JS guests, so the registry can route a "runtime":"wasm" guest
// to it exactly as it would a pump.Worker.
//
// The newline-delimited JSON-RPC-over-pipe protocol and single-goroutine
// request serialization generalize the teacher's discovery.StdioWorker
// (external process over stdio) to a WASI module instantiated in-process by
// wazero, the way the teacher's own discovery.WASMWorker loads and runs one.
package wasmtool

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/mcp-scooter/bridge/internal/pump"
)

// Worker owns one WASM module instance for its entire lifetime: the module
// is instantiated once with a pair of pipes standing in for stdin/stdout,
// and every call is a newline-delimited JSON-RPC request/response exchanged
// over those pipes, matching the hard core's MCP request/response framing.
type Worker struct {
	id string

	runtime wazero.Runtime
	module  wazero.CompiledModule

	stdinW io.WriteCloser
	stdout *bufio.Reader

	inbox chan pump.WorkItem
	stop  chan struct{}
	done  chan struct{}

	callTimeout time.Duration
	exited      chan error
}

// Config tunes a Worker's response timeout. Zero falls back to the spec's
// guest-call defaults (pump.Config.WatchdogRounds * pump.Config.RoundSleep
// is roughly 2s; wasm modules get a more generous wall-clock budget since
// there is no round-based polling for a single blocking read).
type Config struct {
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.CallTimeout == 0 {
		c.CallTimeout = 30 * time.Second
	}
	return c
}

// New loads the module at path and starts instantiating it, with env bound
// into its WASI environment, in a background goroutine. The caller runs Run
// in its own goroutine for the worker loop. The module
// is expected to run an MCP server loop reading newline-delimited JSON-RPC
// requests from stdin and writing newline-delimited responses to stdout,
// the WASM equivalent of an external stdio MCP server.
func New(ctx context.Context, id, path string, env map[string]string, cfg Config) (*Worker, error) {
	cfg = cfg.withDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wasmtool: read module: %w", err)
	}

	runtime := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, runtime)

	module, err := runtime.CompileModule(ctx, data)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("wasmtool: compile module: %w", err)
	}

	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()

	modCfg := wazero.NewModuleConfig().
		WithStdin(stdinR).
		WithStdout(stdoutW).
		WithStderr(os.Stderr).
		WithArgs("mcp-tool")
	for k, v := range env {
		modCfg = modCfg.WithEnv(k, v)
	}

	w := &Worker{
		id:          id,
		runtime:     runtime,
		module:      module,
		stdinW:      stdinW,
		stdout:      bufio.NewReader(stdoutR),
		inbox:       make(chan pump.WorkItem, 64),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		callTimeout: cfg.CallTimeout,
		exited:      make(chan error, 1),
	}

	go func() {
		_, err := runtime.InstantiateModule(ctx, module, modCfg)
		w.exited <- err
	}()

	return w, nil
}

// Submit enqueues a work item; ordering matches pump.Worker's contract so
// the registry can treat either backend identically.
func (w *Worker) Submit(item pump.WorkItem) {
	w.inbox <- item
}

// Stop closes the module's stdin (signaling EOF) and winds the worker down.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

// Run is the worker's main loop: one request is in flight at a time, since
// the module's stdin/stdout pair has no request-id multiplexing beyond what
// the JSON-RPC id itself carries and the module is expected to reply in
// order.
func (w *Worker) Run() {
	defer close(w.done)
	defer w.runtime.Close(context.Background())
	defer w.stdinW.Close()

	for {
		select {
		case <-w.stop:
			w.drainRemaining()
			return
		case item := <-w.inbox:
			w.service(item)
		case err := <-w.exited:
			w.drainRemaining()
			_ = err
			return
		}
	}
}

func (w *Worker) drainRemaining() {
	for {
		select {
		case item := <-w.inbox:
			item.Reply <- pump.Result{Err: fmt.Errorf("wasm guest %s: stopped", w.id)}
		default:
			return
		}
	}
}

// service writes one newline-delimited request to the module's stdin and
// waits for a correlated line back on stdout, with a hard timeout since a
// misbehaving module must not wedge the worker forever (spec §4.2's
// watchdog, here expressed as a single deadline rather than polling rounds).
func (w *Worker) service(item pump.WorkItem) {
	line := append([]byte(item.Payload), '\n')
	if _, err := w.stdinW.Write(line); err != nil {
		item.Reply <- pump.Result{Err: fmt.Errorf("wasm guest %s: write request: %w", w.id, err)}
		return
	}

	respChan := make(chan string, 1)
	errChan := make(chan error, 1)
	go func() {
		resp, err := w.stdout.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		respChan <- resp
	}()

	select {
	case resp := <-respChan:
		item.Reply <- pump.Result{JSON: resp}
	case err := <-errChan:
		item.Reply <- pump.Result{Err: fmt.Errorf("wasm guest %s: read response: %w", w.id, err)}
	case <-time.After(w.callTimeout):
		item.Reply <- pump.Result{Err: fmt.Errorf("wasm guest %s: Timeout waiting for response", w.id)}
	case <-w.stop:
		item.Reply <- pump.Result{Err: fmt.Errorf("wasm guest %s: stopped", w.id)}
	}
}
