package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-hdf4/backend"
	"github.com/robert-malhotra/go-hdf4/hdf4"
	"github.com/robert-malhotra/go-hdf4/internal/config"
)

// app is the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg *config.Config
	log *zap.Logger
	b   backend.Backend
	out io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:          "h4view",
		Short:        "Browse tag/reference scientific containers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./h4view.yaml or $HOME/.h4view/h4view.yaml)")
	pf.String("backend", "", "storage backend: bolt or mem")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.Int("load-start", 0, "index of the first member loaded per group")
	pf.Int("load-max", 0, "maximum members loaded per group (0 = all)")
	pf.Bool("show-all", false, "show engine-internal groups and tables")

	for key, flag := range map[string]string{
		config.KeyBackend:     "backend",
		config.KeyLogLevel:    "log-level",
		config.KeyLoadStart:   "load-start",
		config.KeyLoadMax:     "load-max",
		config.KeyLoadShowAll: "show-all",
	} {
		if err := a.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding --%s: %v", flag, err))
		}
	}

	root.AddCommand(
		newTreeCmd(a),
		newAttrsCmd(a),
		newReadCmd(a),
		newCopyCmd(a),
		newDumpCmd(a),
		newImportDemoCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	log, err := cfg.Logger()
	if err != nil {
		return err
	}
	b, err := cfg.OpenBackend(log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.b = b
	a.out = cmd.OutOrStdout()
	log.Debug("configured",
		zap.String("backend", cfg.Backend),
		zap.String("config", a.v.ConfigFileUsed()))
	return nil
}

func (a *app) open(path string, mode backend.Mode) (*hdf4.File, error) {
	f, err := hdf4.Open(a.b, path,
		hdf4.WithLoadOptions(a.cfg.LoadOptions()),
		hdf4.WithLogger(a.log),
		hdf4.WithMode(mode))
	if err != nil {
		return nil, err
	}
	for _, d := range f.Degraded() {
		a.log.Warn("degraded", zap.Error(d))
	}
	return f, nil
}

func (a *app) closeFile(f *hdf4.File) {
	if err := f.Close(); err != nil {
		a.log.Error("close failed", zap.String("file", f.Path()), zap.Error(err))
	}
}

// lookup resolves path in f.
func lookup(f *hdf4.File, path string) (hdf4.Node, error) {
	n, ok := f.Get(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, hdf4.ErrNotFound)
	}
	return n, nil
}
