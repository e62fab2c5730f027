package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/remote-object/bridge"
	"github.com/wippyai/remote-object/channel"
	"github.com/wippyai/remote-object/config"
	"github.com/wippyai/remote-object/host"
	"github.com/wippyai/remote-object/wire"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to TOML config file")
		list        = flag.Bool("list", false, "List exposed methods and exit")
		method      = flag.String("call", "", "Method to call")
		args        = flag.String("args", "", "Arguments as a JSON array, e.g. '[\"world\", 2]'")
		serve       = flag.Bool("serve", false, "Serve the demo object on the configured address")
		connect     = flag.Bool("connect", false, "Call a running server instead of a local object")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if !*list && *method == "" && !*serve && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: bridge [-config file.toml] -list")
		fmt.Fprintln(os.Stderr, "       bridge [-config file.toml] -call name [-args '[...]'] [-connect]")
		fmt.Fprintln(os.Stderr, "       bridge [-config file.toml] -serve")
		fmt.Fprintln(os.Stderr, "       bridge [-config file.toml] -i  (interactive mode)")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFile, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	bridge.SetLogger(log)
	host.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *serve:
		err = runServer(ctx, cfg, log)
	case *interactive:
		err = runInteractive(cfg)
	case *connect:
		err = runRemote(ctx, cfg, log, *list, *method, *args)
	default:
		err = runLocal(ctx, cfg, log, *list, *method, *args)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string, verbose bool) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// bridgeOptions adds an auditor that logs blocked reflective access.
func bridgeOptions(cfg *config.Config, log *zap.Logger) bridge.Options {
	opts := cfg.BridgeOptions()
	opts.Logger = log
	opts.Auditor = bridge.AuditorFunc(func(caller string) {
		log.Warn("getClass blocked", zap.String("caller", caller))
	})
	return opts
}

func runLocal(ctx context.Context, cfg *config.Config, log *zap.Logger, list bool, method, argsJSON string) error {
	reg := host.NewRegistry()
	defer reg.Close()

	_, b, err := host.Expose(reg, newGreeter(), bridgeOptions(cfg, log))
	if err != nil {
		return fmt.Errorf("expose: %w", err)
	}

	fmt.Printf("Object: %s\n", b.TypeName())
	fmt.Printf("\nExposed methods:\n")
	for _, sig := range b.Signatures() {
		fmt.Printf("  %s\n", sig)
	}
	if list {
		return nil
	}

	args, err := parseArgs(argsJSON)
	if err != nil {
		return err
	}

	fmt.Printf("\nCalling %s%s...\n", method, formatArgs(args))
	res, ok := b.InvokeMethod(ctx, method, args)
	if !ok {
		return stderrors.New("no response: object is gone")
	}
	fmt.Printf("Result: %s\n", res)
	return nil
}

func runRemote(ctx context.Context, cfg *config.Config, log *zap.Logger, list bool, method, argsJSON string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, cfg.Server.Network, cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	client := channel.NewClient(channel.NewClientStream(conn, cfg.Server.MaxFrameSize), log)
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	names, err := client.Methods(ctx, demoObject)
	if err != nil {
		return fmt.Errorf("methods: %w", err)
	}
	fmt.Printf("Remote methods:\n")
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
	if list {
		return nil
	}

	args, err := parseArgs(argsJSON)
	if err != nil {
		return err
	}
	fmt.Printf("\nCalling %s%s...\n", method, formatArgs(args))
	res, err := client.Invoke(ctx, demoObject, method, args...)
	if err != nil {
		return fmt.Errorf("invoke: %w", err)
	}
	fmt.Printf("Result: %s\n", res)
	return nil
}

// demoObject is the id of the Greeter in every served connection.
const demoObject wire.ObjectID = 1

func runServer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.Server.Network == "unix" {
		_ = os.Remove(cfg.Server.Address)
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, cfg.Server.Network, cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	log.Info("serving", zap.String("network", cfg.Server.Network), zap.String("address", cfg.Server.Address))

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go serveConn(ctx, cfg, log, conn)
	}
}

func serveConn(ctx context.Context, cfg *config.Config, log *zap.Logger, conn net.Conn) {
	defer conn.Close()
	log = log.With(zap.String("remote", conn.RemoteAddr().String()))

	reg := host.NewRegistry()
	defer reg.Close()

	id, _, err := host.Expose(reg, newGreeter(), bridgeOptions(cfg, log))
	if err != nil || id != demoObject {
		log.Error("expose demo object", zap.Error(err), zap.Uint32("id", uint32(id)))
		return
	}

	srv := channel.NewServer(reg, log)
	if err := srv.Serve(ctx, channel.NewServerStream(conn, cfg.Server.MaxFrameSize)); err != nil && ctx.Err() == nil {
		log.Warn("connection ended", zap.Error(err))
		return
	}
	log.Debug("connection closed")
}

func formatArgs(args []wire.Value) string {
	s := "("
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
