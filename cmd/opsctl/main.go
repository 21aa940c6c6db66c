// Command opsctl runs the origin monitor and the public-domain reachability
// check, plus the small operational surface around them: config inspection,
// log tailing, state status, and a read-only HTTP API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Leoace99/opsctl/internal/cncheck"
	"github.com/Leoace99/opsctl/internal/config"
	"github.com/Leoace99/opsctl/internal/httpapi"
	"github.com/Leoace99/opsctl/internal/logging"
	"github.com/Leoace99/opsctl/internal/metrics"
	"github.com/Leoace99/opsctl/internal/monitor"
	"github.com/Leoace99/opsctl/internal/notify"
	"github.com/Leoace99/opsctl/internal/probe"
	"github.com/Leoace99/opsctl/internal/proxysource"
	"github.com/Leoace99/opsctl/internal/push"
	"github.com/Leoace99/opsctl/internal/state"
	"github.com/Leoace99/opsctl/internal/targetlist"
)

const defaultConfigPath = "/etc/onekey-ops/opsctl.env"

func usage() {
	fmt.Fprintf(os.Stderr, `usage: opsctl [-config FILE] COMMAND

commands:
  origin run              probe all origin targets once
  cn run [--push|--no-push]
                          check all domains, write the result artifact
  cn push [--file FILE]   push a result artifact to the collection host
  config show             print the resolved configuration (secrets masked)
  logs origin|cn [--lines N]
                          tail a log file
  status                  show failing targets and the last cn run
  serve                   serve state, results, and metrics over HTTP

The config file defaults to %s, overridable with
-config or the OPSCTL_CONFIG environment variable.
`, defaultConfigPath)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("opsctl", flag.ContinueOnError)
	global.Usage = usage
	cfgPath := global.String("config", "", "config file path")
	if err := global.Parse(args); err != nil {
		return 2
	}
	rest := global.Args()
	if len(rest) == 0 {
		usage()
		return 2
	}

	path := *cfgPath
	if path == "" {
		path = os.Getenv("OPSCTL_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: load config %s: %v\n", path, err)
		return 2
	}

	cmd, rest := rest[0], rest[1:]
	switch cmd {
	case "origin":
		if len(rest) == 1 && rest[0] == "run" {
			return originRun(cfg)
		}
	case "cn":
		if len(rest) >= 1 {
			switch rest[0] {
			case "run":
				return cnRun(cfg, rest[1:])
			case "push":
				return cnPush(cfg, rest[1:])
			}
		}
	case "config":
		if len(rest) == 1 && rest[0] == "show" {
			return configShow(cfg)
		}
	case "logs":
		return logsCmd(cfg, rest)
	case "status":
		if len(rest) == 0 {
			return statusCmd(cfg)
		}
	case "serve":
		if len(rest) == 0 {
			return serveCmd(cfg)
		}
	}
	usage()
	return 2
}

func originRun(cfg config.Config) int {
	logger, err := logging.NewLogger(cfg.OriginLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: open log: %v\n", err)
		return 2
	}
	defer logger.Sync()

	targets, err := targetlist.LoadTargets(cfg.OriginTargetsFile, targetlist.Defaults{
		Port:     cfg.OriginDefaultPort,
		Path:     cfg.OriginDefaultPath,
		SlowTime: cfg.OriginDefaultSlow,
		Scheme:   cfg.OriginDefaultScheme,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: load targets %s: %v\n", cfg.OriginTargetsFile, err)
		return 2
	}
	if len(targets) == 0 {
		fmt.Fprintf(os.Stderr, "opsctl: no targets in %s\n", cfg.OriginTargetsFile)
		logger.Error("no_targets", zap.String("file", cfg.OriginTargetsFile))
		return 2
	}

	timeout := time.Duration(cfg.OriginTimeout) * time.Second
	r := &monitor.Runner{
		Logger: logger,
		Prober: probe.NewHTTPOriginProber(timeout),
		Tracker: &monitor.Tracker{
			Store:         state.NewFileStore(cfg.StateDir),
			Notifier:      notify.FromConfig(cfg),
			Logger:        logger,
			AlertInterval: time.Duration(cfg.OriginAlertInterval) * time.Second,
		},
		ExpectCode:  cfg.OriginExpectCode,
		Timeout:     timeout,
		Concurrency: cfg.OriginConcurrency,
	}
	r.Run(context.Background(), targets)
	return 0
}

func cnRun(cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("cn run", flag.ContinueOnError)
	pushOn := fs.Bool("push", false, "push the result after the run")
	pushOff := fs.Bool("no-push", false, "skip the push even if enabled in config")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, err := logging.NewLogger(cfg.CNLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: open log: %v\n", err)
		return 2
	}
	defer logger.Sync()

	domains, err := targetlist.ReadDomains(cfg.CNDomainsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: load domains %s: %v\n", cfg.CNDomainsFile, err)
		return 2
	}
	if len(domains) == 0 {
		fmt.Fprintf(os.Stderr, "opsctl: no domains in %s\n", cfg.CNDomainsFile)
		logger.Error("no_domains", zap.String("file", cfg.CNDomainsFile))
		return 2
	}

	var source proxysource.Source
	if strings.TrimSpace(cfg.CNProxyAPI) != "" {
		source = proxysource.NewHTTPSource(cfg.CNProxyAPI)
	}

	doPush := cfg.CNPushEnable
	if *pushOn {
		doPush = true
	}
	if *pushOff {
		doPush = false
	}

	r := &cncheck.Runner{
		Logger: logger,
		Checker: &cncheck.Checker{
			Prober:        probe.NewHTTPReachProber(time.Duration(cfg.CNTimeout) * time.Second),
			Proxy:         source,
			MaxProxyRetry: cfg.CNMaxProxyRetry,
			Logger:        logger,
		},
		Concurrency: cfg.CNConcurrency,
		ResultFile:  cfg.CNResultFile,
		Pusher:      scpFromConfig(cfg),
		PushEnabled: doPush,
	}
	rr, err := r.Run(context.Background(), domains)
	for _, rec := range rr.Records {
		fmt.Printf("%-40s %s\n", rec.Domain, rec.Final)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: %v\n", err)
		return 1
	}
	return 0
}

func cnPush(cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("cn push", flag.ContinueOnError)
	file := fs.String("file", cfg.CNResultFile, "artifact to push")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if _, err := os.Stat(*file); err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: %v\n", err)
		return 1
	}
	if err := scpFromConfig(cfg).Push(context.Background(), *file); err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: %v\n", err)
		return 1
	}
	fmt.Printf("pushed %s\n", *file)
	return 0
}

func scpFromConfig(cfg config.Config) push.Pusher {
	return &push.SCP{
		User:    cfg.CNPushUser,
		Host:    cfg.CNPushHost,
		Dir:     cfg.CNPushDir,
		KeyFile: cfg.CNPushSSHKey,
		Opts:    strings.Fields(cfg.CNPushSCPOpts),
	}
}

func configShow(cfg config.Config) int {
	for _, k := range cfg.Keys() {
		v := cfg.Value(k)
		if config.IsSensitive(k) {
			v = config.Mask(v)
		}
		fmt.Printf("%s=%s\n", k, v)
	}
	return 0
}

func logsCmd(cfg config.Config, args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}
	var file string
	switch args[0] {
	case "origin":
		file = cfg.OriginLogFile
	case "cn":
		file = cfg.CNLogFile
	default:
		usage()
		return 2
	}

	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	lines := fs.Int("lines", 50, "number of lines")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	out, err := logging.TailFile(file, *lines)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: tail %s: %v\n", file, err)
		return 1
	}
	for _, l := range out {
		fmt.Println(l)
	}
	return 0
}

func statusCmd(cfg config.Config) int {
	snap, err := state.NewFileStore(cfg.StateDir).Snapshot(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: read state: %v\n", err)
		return 1
	}
	if len(snap) == 0 {
		fmt.Println("origin: all targets healthy")
	} else {
		fmt.Printf("origin: %d failing target(s)\n", len(snap))
		names := make([]string, 0, len(snap))
		for n := range snap {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			st := snap[n]
			last := "never"
			if st.LastAlertUnix > 0 {
				last = time.Unix(st.LastAlertUnix, 0).Format("2006-01-02 15:04:05")
			}
			fmt.Printf("  %-30s consecutive=%d last_alert=%s\n", n, st.ConsecutiveFailures, last)
		}
	}

	data, err := os.ReadFile(cfg.CNResultFile)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("cn: no result yet")
			return 0
		}
		fmt.Fprintf(os.Stderr, "opsctl: read result: %v\n", err)
		return 1
	}
	var rr cncheck.RunResult
	if err := json.Unmarshal(data, &rr); err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: parse result %s: %v\n", cfg.CNResultFile, err)
		return 1
	}
	fmt.Printf("cn: run %s finished %s, %d domain(s)\n",
		rr.RunID, rr.FinishedAt.Format("2006-01-02 15:04:05"), len(rr.Records))
	byFinal := map[string]int{}
	for _, rec := range rr.Records {
		byFinal[rec.Final]++
	}
	finals := make([]string, 0, len(byFinal))
	for f := range byFinal {
		finals = append(finals, f)
	}
	sort.Strings(finals)
	for _, f := range finals {
		fmt.Printf("  %-45s %d\n", f, byFinal[f])
	}
	return 0
}

func serveCmd(cfg config.Config) int {
	logger, err := logging.NewLogger(filepath.Join(cfg.LogDir, "opsctl.log"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: open log: %v\n", err)
		return 2
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: register metrics: %v\n", err)
		return 2
	}

	s := httpapi.NewServer(logger, state.NewFileStore(cfg.StateDir), cfg.CNResultFile)
	if keys := strings.TrimSpace(cfg.APIKeys); keys != "" {
		s.APIKeys = strings.Fields(strings.ReplaceAll(keys, ",", " "))
	}
	s.RPM = cfg.APIRPM
	s.Burst = cfg.APIBurst
	s.Registry = reg

	logger.Info("api_listening", zap.String("addr", cfg.APIAddr))
	fmt.Printf("listening on %s\n", cfg.APIAddr)
	if err := http.ListenAndServe(cfg.APIAddr, s.Router()); err != nil {
		fmt.Fprintf(os.Stderr, "opsctl: serve: %v\n", err)
		return 1
	}
	return 0
}
