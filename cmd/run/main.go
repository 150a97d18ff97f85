package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/script-runtime/config"
	"github.com/wippyai/script-runtime/engine"
	"github.com/wippyai/script-runtime/jobs"
	"github.com/wippyai/script-runtime/registry"
	"github.com/wippyai/script-runtime/resolve"
	"github.com/wippyai/script-runtime/runtime"
	"github.com/wippyai/script-runtime/source"
	"github.com/wippyai/script-runtime/watch"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		root        = flag.String("root", "", "Script root directory (overrides config)")
		entry       = flag.String("entry", "", "Entry module to require (overrides config)")
		watchMode   = flag.Bool("watch", false, "Watch the script root and reload on change")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		resolve.SetLogger(logger)
		registry.SetLogger(logger)
		jobs.SetLogger(logger)
		engine.SetLogger(logger)
		runtime.SetLogger(logger)
		watch.SetLogger(logger)
	}

	cfg, err := loadConfig(*configPath, *root, *entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *interactive:
		err = runInteractive(cfg)
	case *watchMode:
		err = runWatch(cfg)
	default:
		err = run(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path, root, entry string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if root != "" {
		cfg.Root = root
	}
	if entry != "" {
		cfg.Entry = entry
	}
	return cfg, cfg.Validate()
}

func newRuntime(cfg *config.Config) *runtime.Runtime {
	return runtime.New(runtime.Options{
		Engine:        engine.New(),
		Provider:      source.NewDir(cfg.Root),
		BuiltinPrefix: cfg.BuiltinPrefix,
		Extensions:    cfg.Extensions,
		Namespaces:    cfg.Namespaces,
		Aliases:       cfg.Aliases,
	})
}

// run requires the entry module once and prints its exports.
func run(cfg *config.Config) error {
	rt := newRuntime(cfg)
	defer rt.Close()

	exports, id, err := rt.RequireFrom("", cfg.Entry)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %v\n", id, exports)
	return nil
}

// runWatch keeps the entry module loaded, re-requiring it whenever a
// file change invalidates part of its dependency cone.
func runWatch(cfg *config.Config) error {
	rt := newRuntime(cfg)
	defer rt.Close()

	w := watch.New(watch.Options{
		Root:  cfg.Root,
		Queue: rt.Queue(),
		Apply: func(ids []string) { rt.MarkChanged(ids...) },
	})
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Close()

	exports, id, err := rt.RequireFrom("", cfg.Entry)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %v\n", id, exports)
	fmt.Println("watching for changes, ctrl+c to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			stats, err := rt.Tick(64, 10*time.Millisecond)
			if err != nil {
				return err
			}
			if stats.Invalidated == 0 {
				continue
			}
			exports, id, err := rt.RequireFrom("", cfg.Entry)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
				continue
			}
			fmt.Printf("reloaded %s: %v\n", id, exports)
		}
	}
}
