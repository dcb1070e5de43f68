// Package cli implements the inspectorctl command tree on top of the
// inspector store.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"inspectorcore/internal/blob"
	"inspectorcore/internal/config"
	"inspectorcore/internal/core"
	"inspectorcore/internal/kv"
	"inspectorcore/internal/logging"
	"inspectorcore/pkg/domain"
)

// Metrics sinks selectable with --metrics.
const (
	metricsExpvar     = "expvar"
	metricsPrometheus = "prometheus"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	metrics    string
	tracePath  string
	noColor    bool

	settings config.Settings
	logger   *logging.Logger
	backing  domain.BackingStore
	store    *core.Store

	expvar    *core.ExpvarMetricsRecorder
	registry  *prometheus.Registry
	traceFile *os.File
	blobs     blob.Store
	openBlobs func(context.Context, blob.Config) (blob.Store, error)
	stderr    io.Writer
}

// NewRootCmd builds the inspectorctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{openBlobs: blob.Open}
	root := &cobra.Command{
		Use:   "inspectorctl",
		Short: "Inspect building locations and manage inspection reports",
		Long: `inspectorctl drives the inspector store from the command line.

Every command loads the persisted state from the configured backing store,
applies one operation and writes the result back.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.noColor {
				color.NoColor = true
			}
			a.stderr = cmd.ErrOrStderr()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "settings file (YAML); INSPECTOR_* variables override it")
	flags.StringVar(&a.metrics, "metrics", "", "dump operation metrics to stderr after the command (expvar|prometheus)")
	flags.StringVar(&a.tracePath, "trace", "", "append one JSON line per store operation to this file")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		locationsCmd(a),
		exceptionCmd(a),
		checkpointCmd(a),
		reportCmd(a),
		configCmd(a),
		exportCmd(a),
		archiveCmd(a),
		catalogCmd(a),
	)
	return root
}

// loadSettings reads the settings and builds the logger once.
func (a *app) loadSettings() error {
	if a.logger != nil {
		return nil
	}
	s, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	out := a.stderr
	if out == nil {
		out = os.Stderr
	}
	logger, err := logging.New(logging.Options{Output: out, Level: s.Log.Level, JSON: s.Log.Format == "json"})
	if err != nil {
		return err
	}
	a.settings = s
	a.logger = logger
	return nil
}

// open loads the settings, opens the backing store and builds the store with
// every persisted location on the active list.
func (a *app) open(ctx context.Context) (*core.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if err := a.loadSettings(); err != nil {
		return nil, err
	}
	kvCfg := a.settings.KV()
	kvCfg.BadgerLogger = a.logger
	backing, err := kv.Open(ctx, kvCfg)
	if err != nil {
		return nil, err
	}
	opts := []core.Option{core.WithLogger(a.logger)}
	switch a.metrics {
	case "":
	case metricsExpvar:
		a.expvar = core.NewExpvarMetricsRecorder("")
		opts = append(opts, core.WithMetricsRecorder(a.expvar))
	case metricsPrometheus:
		a.registry = prometheus.NewRegistry()
		rec, err := core.NewPrometheusMetricsRecorder(a.registry)
		if err != nil {
			_ = backing.Close()
			return nil, err
		}
		opts = append(opts, core.WithMetricsRecorder(rec))
	default:
		_ = backing.Close()
		return nil, fmt.Errorf("unknown metrics sink %q (want %s or %s)", a.metrics, metricsExpvar, metricsPrometheus)
	}
	if a.tracePath != "" {
		// #nosec G304 -- trace path is chosen by the operator
		f, err := os.OpenFile(a.tracePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			_ = backing.Close()
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		a.traceFile = f
		opts = append(opts, core.WithTracer(core.NewJSONTracer(f)))
	}
	a.backing = backing
	a.store = core.NewStore(ctx, backing, opts...)
	a.store.LoadPersistedLocations(ctx)
	a.logger.Debug("store opened", "driver", string(backing.Driver()))
	return a.store, nil
}

// openBlobStore opens the archive target named by the settings.
func (a *app) openBlobStore(ctx context.Context) (blob.Store, error) {
	if a.blobs != nil {
		return a.blobs, nil
	}
	if err := a.loadSettings(); err != nil {
		return nil, err
	}
	store, err := a.openBlobs(ctx, a.settings.BlobConfig())
	if err != nil {
		return nil, err
	}
	a.blobs = store
	return store, nil
}

func (a *app) close(cmd *cobra.Command) error {
	var errs []error
	if err := a.dumpMetrics(cmd.ErrOrStderr()); err != nil {
		errs = append(errs, err)
	}
	if a.backing != nil {
		if err := a.backing.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backing store: %w", err))
		}
		a.backing = nil
		a.store = nil
	}
	if a.traceFile != nil {
		if err := a.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trace file: %w", err))
		}
		a.traceFile = nil
	}
	return errors.Join(errs...)
}

func (a *app) dumpMetrics(w io.Writer) error {
	switch {
	case a.expvar != nil:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a.expvar.Snapshot())
	case a.registry != nil:
		families, err := a.registry.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
		}
	}
	return nil
}
