// Package cli implements the missionctl command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vaibhav-sd/MissionControlProject/internal/config"
	"github.com/vaibhav-sd/MissionControlProject/internal/service"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

type rootOptions struct {
	configPath string
	output     string
	verbose    bool
}

// NewRootCmd builds the missionctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "missionctl",
		Short: "Mission control client",
		Long: `missionctl keeps a local, periodically refreshed view of the missions known to
the mission control service, submits new missions and reports whether the
service is reachable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case OutputText, OutputJSON, OutputYAML:
				return nil
			default:
				return fmt.Errorf("unsupported output format %q", opts.output)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", OutputText, "output format: text, json or yaml")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at the configured level instead of warn")

	cmd.AddCommand(
		newServeCmd(opts),
		newConsoleCmd(opts),
		newSubmitCmd(opts),
		newStatusCmd(opts),
		newGetCmd(opts),
		newHealthCmd(opts),
	)

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config and builds a logger. One-shot commands log to
// stderr at warn unless --verbose so that stdout carries only results.
func (o *rootOptions) loadConfig(logOutput string, quiet bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.Logging
	if quiet && !o.verbose {
		logCfg.Level = "warn"
	}
	return cfg, NewLogger(logCfg, logOutput), nil
}

// newSession loads config and wires a session for a one-shot command.
func (o *rootOptions) newSession() (*service.Session, *config.Config, *zap.Logger, error) {
	cfg, logger, err := o.loadConfig("stderr", true)
	if err != nil {
		return nil, nil, nil, err
	}

	session, err := service.NewSession(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, nil, err
	}
	return session, cfg, logger, nil
}

// render writes v in the selected format; text uses the supplied formatter.
func (o *rootOptions) render(w io.Writer, v interface{}, text func() string) error {
	switch o.output {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		s := text()
		if s == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, s)
		return err
	}
}
