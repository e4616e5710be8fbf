package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mikey-austin/musicd/internal/broker"
	"github.com/mikey-austin/musicd/internal/events"
	"github.com/mikey-austin/musicd/internal/gst"
	"github.com/mikey-austin/musicd/internal/httpapi"
	"github.com/mikey-austin/musicd/internal/mpv"
	"github.com/mikey-austin/musicd/internal/musicd"
	"github.com/mikey-austin/musicd/internal/player"
	"github.com/mikey-austin/musicd/internal/resolver"
)

func main() {
	var (
		configPath  string
		listen      string
		engine      string
		logLevel    string
		logFormat   string
		logOutput   string
		logUTC      bool
		printConfig bool
		dryRun      bool
	)

	defaultConfig, err := musicd.DefaultConfigPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.StringVar(&configPath, "config", defaultConfig, "config file path")
	flag.StringVar(&listen, "listen", "", "listen address override (host:port)")
	flag.StringVar(&engine, "engine", "", "playback engine override (mpv|gstreamer)")
	flag.StringVar(&logLevel, "log-level", "", "log level override")
	flag.StringVar(&logFormat, "log-format", "", "log format override (text|json)")
	flag.StringVar(&logOutput, "log-output", "", "log output override (stdout|stderr)")
	flag.BoolVar(&logUTC, "log-utc", false, "use UTC timestamps in logs")
	flag.BoolVar(&printConfig, "print-config", false, "print resolved config and exit")
	flag.BoolVar(&dryRun, "dry-run", false, "validate config and exit")
	flag.Parse()

	cfg, err := musicd.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := applyOverrides(&cfg, listen, engine, logLevel, logFormat, logOutput, logUTC); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if printConfig {
		printResolvedConfig(cfg)
		return
	}
	if dryRun {
		return
	}

	logger := musicd.NewLogger(musicd.LogConfig{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
		Output: cfg.Server.LogOutput,
		UTC:    cfg.Server.LogUTC,
	})
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engineImpl, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Error("engine setup failed", zap.Error(err))
		os.Exit(1)
	}

	store := player.NewStore()
	controller := player.NewController(logger.With(zap.String("module", "player")), store, engineImpl, player.Config{
		PollInterval: time.Duration(cfg.Player.PollIntervalMS) * time.Millisecond,
		StartRetries: cfg.Player.StartRetries,
	})

	res := buildResolver(cfg)
	api := httpapi.NewModule(logger.With(zap.String("module", "httpapi")), store, controller, res, httpapi.Config{
		Listen:      cfg.ListenAddr(),
		SearchLimit: cfg.Resolver.SearchLimit,
	})

	logger.Info("musicd starting",
		zap.String("listen", cfg.ListenAddr()),
		zap.String("engine", cfg.Player.Engine),
		zap.String("config", configPath),
	)

	modules := []musicd.ModuleRunner{
		{Name: "player", Run: controller.Run},
		{Name: "httpapi", Run: api.Run},
	}

	// The events publisher connects at setup time, so when it rides the
	// embedded broker that broker must already be listening.
	needEmbeddedEarly := cfg.Modules.Events.Enabled && cfg.Modules.Events.Broker == ""

	if cfg.Modules.EmbeddedMQTT.Enabled {
		mod, err := broker.NewModule(logger.With(zap.String("module", "embedded_mqtt")), broker.Config{
			Listen:         cfg.Modules.EmbeddedMQTT.Listen,
			AllowAnonymous: cfg.Modules.EmbeddedMQTT.AllowAnonymous,
			Username:       cfg.Modules.EmbeddedMQTT.Username,
			Password:       cfg.Modules.EmbeddedMQTT.Password,
		})
		if err != nil {
			logger.Error("embedded mqtt setup failed", zap.Error(err))
			os.Exit(1)
		}
		if needEmbeddedEarly {
			if err := startEmbeddedBroker(ctx, cfg, logger, cancel, mod); err != nil {
				logger.Error("embedded mqtt failed", zap.Error(err))
				os.Exit(1)
			}
		} else {
			modules = append(modules, musicd.ModuleRunner{Name: "embedded_mqtt", Run: mod.Run})
		}
	}

	if cfg.Modules.Events.Enabled {
		mod, err := buildEvents(cfg, logger, store)
		if err != nil {
			logger.Error("events setup failed", zap.Error(err))
			os.Exit(1)
		}
		modules = append(modules, musicd.ModuleRunner{Name: "events", Run: mod.Run})
	}

	supervisor := musicd.Supervisor{Logger: logger}
	if err := supervisor.Run(ctx, modules); err != nil {
		logger.Error("supervisor error", zap.Error(err))
		os.Exit(1)
	}
}

func applyOverrides(cfg *musicd.Config, listen, engine, logLevel, logFormat, logOutput string, logUTC bool) error {
	if listen != "" {
		host, port, err := net.SplitHostPort(listen)
		if err != nil {
			return fmt.Errorf("invalid listen address %q: %w", listen, err)
		}
		parsed, err := net.LookupPort("tcp", port)
		if err != nil {
			return fmt.Errorf("invalid listen port %q: %w", port, err)
		}
		cfg.Server.Host = host
		cfg.Server.Port = parsed
	}
	if engine != "" {
		cfg.Player.Engine = engine
	}
	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.Server.LogFormat = logFormat
	}
	if logOutput != "" {
		cfg.Server.LogOutput = logOutput
	}
	if logUTC {
		cfg.Server.LogUTC = true
	}
	return nil
}

// buildEngine selects the playback backend.
func buildEngine(cfg musicd.Config, logger *zap.Logger) (player.Engine, error) {
	switch strings.ToLower(cfg.Player.Engine) {
	case "", "mpv":
		var extra []string
		if cfg.Player.MPVArgs != "" {
			extra = strings.Fields(cfg.Player.MPVArgs)
		}
		return mpv.NewDriver(mpv.Options{
			Bin:       cfg.Player.MPVBin,
			ExtraArgs: extra,
			Logger:    logger.With(zap.String("module", "mpv")),
		}), nil
	case "gstreamer", "gst":
		return gst.NewDriver(gst.Options{
			Pipeline: cfg.Player.GstPipeline,
			Device:   cfg.Player.GstDevice,
		})
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Player.Engine)
	}
}

func buildResolver(cfg musicd.Config) resolver.Resolver {
	timeout := time.Duration(cfg.Resolver.TimeoutMS) * time.Millisecond
	return resolver.Chain{
		Lookup: resolver.NewYTDLP(cfg.Resolver.YTDLPBin, timeout),
		Feed:   resolver.NewFeed(timeout),
	}
}

// startEmbeddedBroker runs the broker outside the supervisor and waits until
// it accepts connections.
func startEmbeddedBroker(ctx context.Context, cfg musicd.Config, logger *zap.Logger, cancel context.CancelFunc, mod *broker.Module) error {
	go func() {
		if err := mod.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("embedded mqtt exited", zap.Error(err))
			cancel()
		}
	}()

	listen := cfg.Modules.EmbeddedMQTT.Listen
	if listen == "" {
		listen = "127.0.0.1:1883"
	}
	return waitForListen(ctx, listen, 3*time.Second)
}

// buildEvents connects the state publisher, riding the embedded broker when
// no external one is configured.
func buildEvents(cfg musicd.Config, logger *zap.Logger, store *player.Store) (*events.Module, error) {
	brokerURL := cfg.Modules.Events.Broker
	if brokerURL == "" {
		if !cfg.Modules.EmbeddedMQTT.Enabled {
			return nil, errors.New("events needs a broker or the embedded mqtt module")
		}
		listen := cfg.Modules.EmbeddedMQTT.Listen
		if listen == "" {
			listen = "127.0.0.1:1883"
		}
		brokerURL = broker.BrokerURL(listen)
	}

	publisher, err := events.NewPahoPublisher(events.PahoOptions{
		BrokerURL: brokerURL,
		ClientID:  cfg.Modules.Events.ClientID,
		Username:  cfg.Modules.Events.Username,
		Password:  cfg.Modules.Events.Password,
	})
	if err != nil {
		return nil, err
	}
	return events.NewModule(logger.With(zap.String("module", "events")), store, publisher, events.Config{
		TopicBase: cfg.Modules.Events.TopicBase,
		KeepAlive: time.Duration(cfg.Modules.Events.KeepAliveMS) * time.Millisecond,
	}), nil
}

func waitForListen(ctx context.Context, listen string, timeout time.Duration) error {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return err
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	addr := net.JoinHostPort(host, port)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("embedded mqtt not ready at %s", addr)
}

func printResolvedConfig(cfg musicd.Config) {
	fmt.Fprintf(os.Stdout,
		"listen=%s engine=%s log_level=%s log_format=%s log_output=%s log_utc=%t events=%t embedded_mqtt=%t\n",
		cfg.ListenAddr(),
		cfg.Player.Engine,
		cfg.Server.LogLevel,
		cfg.Server.LogFormat,
		cfg.Server.LogOutput,
		cfg.Server.LogUTC,
		cfg.Modules.Events.Enabled,
		cfg.Modules.EmbeddedMQTT.Enabled,
	)
}
