// Command jsonserve serves the JSON files of the configured directories over
// HTTP.
//
// Usage:
//
//	jsonserve [config-path]
//
// config-path defaults to ./config.json, which is created with default
// settings when it does not exist. An explicit config-path must exist. Every
// directory listed in json_directories is read once at startup; see package
// scanner for how files map to URL paths.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"jsonserve/internal/assets"
	"jsonserve/internal/scanner"
	"jsonserve/internal/server"
	"jsonserve/internal/shared"
)

const version = "0.1.1"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jsonserve [config-path]",
		Short: "Serve a directory tree of JSON files over HTTP",
		Long: `
Serve a directory tree of JSON files over HTTP

jsonserve reads every .json file found directly inside the configured
directories and serves it read-only:

  <dir>/index.json   ->  GET /<dir>
  <dir>/<name>.json  ->  GET /<dir>/<name>

Configuration is read from config-path (default ./config.json). The default
file is created when missing; an explicit config-path must exist. Any key can be overridden with a
JSONSERVE_ prefixed environment variable:

  host              (string)  (JSONSERVE_HOST)
  port              (int)     (JSONSERVE_PORT)
  json_directories  (list)    (JSONSERVE_JSON_DIRECTORIES, comma separated)
  debug             (bool)    (JSONSERVE_DEBUG)
  log_json          (bool)    (JSONSERVE_LOG_JSON)
  log_file          (string)  (JSONSERVE_LOG_FILE)
  access_log_db     (string)  (JSONSERVE_ACCESS_LOG_DB)
  metrics_address   (string)  (JSONSERVE_METRICS_ADDRESS)
`,
		Args:         cobra.MaximumNArgs(1),
		Version:      version,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			serve(args)
		},
	}
}

// loadConfig reads the config named in args, or the default path when args
// is empty. Only the default path is created when missing.
func loadConfig(args []string) (cfg *shared.ServerConfig, path string, created bool, err error) {
	if len(args) == 0 {
		path = shared.DefaultConfigPath
		cfg, created, err = shared.LoadOrCreateServerConfig(path)
		return cfg, path, created, err
	}
	path = args[0]
	cfg, err = shared.LoadServerConfig(path)
	return cfg, path, false, err
}

func serve(args []string) {
	cfg, configPath, created, err := loadConfig(args)
	if err != nil {
		initFatal(bootstrapLogger(), err, "loading config")
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()
	if created {
		level.Info(logger).Log("msg", "wrote default config", "path", configPath)
	}

	table, err := scanner.New(assets.Seed{}, log.With(logger, "component", "scanner")).Scan(cfg.JSONDirectories)
	if err != nil {
		initFatal(logger, err, "loading json directories")
	}

	var accessLog server.AccessLog
	if cfg.AccessLogDB != "" {
		db, err := server.OpenDB(cfg.AccessLogDB)
		if err != nil {
			initFatal(logger, err, "opening access log")
		}
		defer db.Close()
		if err := server.ApplySchema(db, log.With(logger, "component", "accesslog")); err != nil {
			initFatal(logger, err, "preparing access log")
		}
		accessLog = server.NewSQLiteAccessLog(db)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store := server.NewStore(table)
	logEndpoints(logger, store)

	httpLogger := log.With(logger, "component", "http")
	handler := server.NewHandler(&server.API{
		Store:     store,
		AccessLog: accessLog,
		Metrics:   server.NewMetrics(reg),
		Logger:    httpLogger,
	})

	// Listeners are opened only after the table is complete.
	ln, metricsLn, err := openListeners(cfg)
	if err != nil {
		bindFailed(logger, color.Output, err)
		return
	}

	color.Green("Server running at %s", listenURL(cfg.Host, ln.Addr()))
	fmt.Printf("Server version %s\n", version)

	var g run.Group
	{
		srv := server.NewServer(handler, server.ServerOptions{Logger: httpLogger})
		g.Add(func() error {
			return srv.Serve(ln)
		}, func(error) {
			if err := srv.Shutdown(context.Background()); err != nil {
				level.Error(logger).Log("msg", "graceful shutdown", "err", err)
			}
		})
	}
	if metricsLn != nil {
		metricsLogger := log.With(logger, "component", "metrics")
		srv := server.NewServer(server.MetricsHandler(reg), server.ServerOptions{Logger: metricsLogger})
		g.Add(func() error {
			return srv.Serve(metricsLn)
		}, func(error) {
			if err := srv.Shutdown(context.Background()); err != nil {
				level.Error(metricsLogger).Log("msg", "graceful shutdown", "err", err)
			}
		})
	}
	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		level.Info(logger).Log("msg", "terminated", "signal", sigErr.Signal)
		return
	}
	if err != nil {
		initFatal(logger, err, "serving")
	}
}

// initFatal reports a startup failure and exits non-zero.
func initFatal(logger log.Logger, err error, wrapMsg string) {
	level.Error(logger).Log("msg", "startup failed", "step", wrapMsg, "err", err)
	os.Exit(1)
}

func logEndpoints(logger log.Logger, store *server.Store) {
	level.Info(logger).Log("msg", "endpoints loaded", "count", store.Len(), "endpoints", strings.Join(store.Keys(), ","))
}

// openListeners binds the API address and, when configured, the metrics
// address. Nothing stays open when an error is returned.
func openListeners(cfg *shared.ServerConfig) (api, metrics net.Listener, err error) {
	api, err = net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, nil, err
	}
	if cfg.MetricsAddress == "" {
		return api, nil, nil
	}
	metrics, err = net.Listen("tcp", cfg.MetricsAddress)
	if err != nil {
		api.Close()
		return nil, nil, err
	}
	return api, metrics, nil
}

// bindFailed reports a listener that could not be opened. This is not a
// crash: the process exits with status 0 after the message.
func bindFailed(logger log.Logger, w io.Writer, err error) {
	level.Error(logger).Log("msg", "bind failed", "err", err)
	color.New(color.FgRed).Fprintf(w, "Error starting the server: %v\n", err)
}

// listenURL renders the address users should open, keeping the configured
// host name and the port actually bound.
func listenURL(host string, addr net.Addr) string {
	port := ""
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = strconv.Itoa(tcp.Port)
	} else if _, p, err := net.SplitHostPort(addr.String()); err == nil {
		port = p
	}
	return "http://" + net.JoinHostPort(host, port)
}
