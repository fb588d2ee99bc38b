package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	apierrors "github.com/vaibhav-sd/MissionControlProject/internal/errors"
	"github.com/vaibhav-sd/MissionControlProject/internal/model"
	"github.com/vaibhav-sd/MissionControlProject/internal/service"
)

// StatusReport is the structured output of the status command.
type StatusReport struct {
	model.SnapshotView `yaml:",inline"`

	Reachability model.ReachabilitySignal `json:"reachability" yaml:"reachability"`
}

func newStatusReport(session *service.Session, snap *model.MissionSnapshot) StatusReport {
	return StatusReport{
		Reachability: session.Reachability(),
		SnapshotView: snap.View(),
	}
}

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <description>",
		Short: "Submit a new mission",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, logger, err := opts.newSession()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer session.Close()

			attempt, submitErr := session.SubmitMission(commandContext(cmd), strings.Join(args, " "))
			if err := opts.render(cmd.OutOrStdout(), attempt, func() string {
				return FormatAttempt(attempt)
			}); err != nil {
				return err
			}
			if submitErr != nil {
				return fmt.Errorf("submission failed: %w", submitErr)
			}
			return nil
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"list", "ls", "refresh"},
		Short:   "Show every known mission and the connection state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, cfg, logger, err := opts.newSession()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer session.Close()

			snap := session.ForceRefresh(commandContext(cmd))
			if err := renderStatus(cmd, opts, session, snap); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			return watchStatus(cmd, opts, session, cfg.Sync.PollInterval)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling and print every new snapshot")
	return cmd
}

func renderStatus(cmd *cobra.Command, opts *rootOptions, session *service.Session, snap *model.MissionSnapshot) error {
	return opts.render(cmd.OutOrStdout(), newStatusReport(session, snap), func() string {
		return FormatSnapshot(snap, session.Reachability())
	})
}

// watchStatus starts the scheduler and prints each snapshot generation until
// interrupted.
func watchStatus(cmd *cobra.Command, opts *rootOptions, session *service.Session, interval time.Duration) error {
	runCtx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	last := session.Snapshot().Generation()
	if err := session.Start(runCtx); err != nil {
		return err
	}

	// Check the store at twice the sync rate.
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return nil
		case <-ticker.C:
			snap := session.Snapshot()
			if snap.Generation() == last {
				continue
			}
			last = snap.Generation()
			if err := renderStatus(cmd, opts, session, snap); err != nil {
				return err
			}
		}
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <mission-id>",
		Short: "Fetch one mission directly from the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, logger, err := opts.newSession()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer session.Close()

			record, err := session.LookupMission(commandContext(cmd), args[0])
			if err != nil {
				return errors.New(apierrors.UserMessage(err))
			}
			return opts.render(cmd.OutOrStdout(), record, func() string {
				return FormatRecord(record)
			})
		},
	}
}

// HealthReport is the structured output of the health command.
type HealthReport struct {
	Reachability model.ReachabilitySignal `json:"reachability" yaml:"reachability"`
	Remote       string                   `json:"remote" yaml:"remote"`
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the service and report reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, cfg, logger, err := opts.newSession()
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer session.Close()

			session.ForceRefresh(commandContext(cmd))
			report := HealthReport{Reachability: session.Reachability(), Remote: cfg.Remote.BaseURL}
			if err := opts.render(cmd.OutOrStdout(), report, func() string {
				return FormatReachability(report.Reachability) + "  " + mutedStyle.Render(report.Remote)
			}); err != nil {
				return err
			}
			if report.Reachability != model.ReachabilityReachable {
				return fmt.Errorf("mission control service at %s is unreachable", cfg.Remote.BaseURL)
			}
			return nil
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}
