package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"holocal/internal/backup"
	"holocal/internal/commands"
	"holocal/internal/config"
	"holocal/internal/kv"
	appLog "holocal/internal/log"
	"holocal/internal/store"
	"holocal/internal/web"
)

const version = "0.1.0"

// flagConfig holds CLI flag values shared by the server and subcommands.
type flagConfig struct {
	configPath string
	listen     string
	debug      bool
}

func main() {
	flags, args := parseFlags()

	// hash-password needs no config.
	if len(args) > 0 && args[0] == "hash-password" {
		if err := commands.HashPassword(args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetFormat(conf.LogFormat)
	appLog.SetLevel(appLog.Level(conf.LogLevel))
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(args) > 0 {
		if err := runCommand(ctx, conf, args[0], args[1:]); err != nil {
			appLog.Error("command failed", err, "command", args[0])
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, conf); err != nil {
		appLog.Error("holocal exited with error", err)
		os.Exit(1)
	}
	appLog.Info("holocal exiting")
}

func runCommand(ctx context.Context, conf *config.Config, name string, args []string) error {
	switch name {
	case "export-ics":
		return commands.ExportICS(ctx, conf, args)
	case "import-ics":
		return commands.ImportICS(ctx, conf, args)
	case "snapshot":
		return commands.Snapshot(ctx, conf, args)
	case "restore":
		return commands.Restore(ctx, conf, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", name)
	}
}

// serve runs the web server and backup scheduler until ctx is cancelled.
func serve(ctx context.Context, conf *config.Config) error {
	appLog.Info("holocal starting", "version", version)
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"storage", conf.Storage.Type,
		"backup_cron", conf.Backup.Cron,
		"basic_auth", conf.BasicAuth != nil,
	)

	backend, err := kv.New(conf.Storage)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			appLog.Error("failed to close storage", err)
		}
	}()

	st, err := store.Open(ctx, backend)
	if err != nil {
		return err
	}

	// Backups only make sense for storage that outlives the process.
	if conf.Storage.Type != config.StorageMemory {
		b := backup.New(backend, conf.Backup)
		if err := b.Start(conf.Backup.Cron); err != nil {
			return err
		}
		defer b.Stop()
	}

	return web.NewServer(conf, st).ListenAndServe(ctx)
}

func parseFlags() (flagConfig, []string) {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/holocal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: holocal [OPTIONS] [COMMAND]\n\n")
		fmt.Fprintf(os.Stderr, "Without a command the web server and backup scheduler run.\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  hash-password   print a bcrypt hash for basic_auth.password_hash\n")
		fmt.Fprintf(os.Stderr, "  export-ics      write a calendar as .ics\n")
		fmt.Fprintf(os.Stderr, "  import-ics      import events from an .ics file or URL\n")
		fmt.Fprintf(os.Stderr, "  snapshot        render the month page to PNG\n")
		fmt.Fprintf(os.Stderr, "  restore         load a backup file into storage\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	return cfg, flag.Args()
}
