package main

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

	"backend-practicelog/internal/client"
	"backend-practicelog/internal/timer"
	"backend-practicelog/internal/timer/submit"
)

var tickInterval = time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	configPath := defaultConfigPath()

	root := &cobra.Command{
		Use:           "practice",
		Short:         "Practice session timer and log",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "path to CLI config file")

	root.AddCommand(newLoginCmd(&configPath))
	root.AddCommand(newStartCmd(&configPath))
	root.AddCommand(newResumeCmd(&configPath))
	root.AddCommand(newPauseCmd(&configPath))
	root.AddCommand(newStatusCmd(&configPath))
	root.AddCommand(newLapCmd(&configPath))
	root.AddCommand(newStopCmd(&configPath))
	root.AddCommand(newSaveCmd(&configPath))
	return root
}

func loadTimer(configPath string) (cliConfig, *timer.Timer, bool, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return cliConfig{}, nil, false, err
	}
	t, found, err := timer.Restore(timer.NewFileStore(cfg.SnapshotPath))
	if err != nil {
		return cliConfig{}, nil, false, err
	}
	return cfg, t, found, nil
}

func newLoginCmd(configPath *string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login --email <email> --password <password>",
		Short: "Authenticate and store the API token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			token, err := client.New(cfg.BaseURL, "").Login(context.Background(), email, password)
			if err != nil {
				return err
			}
			cfg.Token = token
			if err := saveConfig(*configPath, cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newStartCmd(configPath *string) *cobra.Command {
	var goal int
	var instrument, notes string
	cmd := &cobra.Command{
		Use:   "start --goal <minutes>",
		Short: "Start a practice timer and count toward the goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, t, found, err := loadTimer(*configPath)
			if err != nil {
				return err
			}
			if found && t.State() != timer.Idle {
				return fmt.Errorf("a timer is already in progress (state %s); resume, save, or stop it first", t.State())
			}
			if err := t.Start(goal, instrument, notes); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "practicing for %d minute(s); Ctrl-C pauses\n", goal)
			return runClock(cmd, t)
		},
	}
	cmd.Flags().IntVar(&goal, "goal", 30, "goal duration in minutes")
	cmd.Flags().StringVar(&instrument, "instrument", "", "instrument being practiced")
	cmd.Flags().StringVar(&notes, "notes", "", "session notes")
	return cmd
}

func newResumeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused timer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, t, found, err := loadTimer(*configPath)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no timer in progress")
			}
			if err := t.Resume(); err != nil {
				return err
			}
			if t.State() == timer.Completed {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "goal already reached; run `practice save`")
				return nil
			}
			return runClock(cmd, t)
		},
	}
}

func newPauseCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause a running timer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, t, found, err := loadTimer(*configPath)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no timer in progress")
			}
			if err := t.Pause(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "paused at %s\n", formatClock(t.Elapsed()))
			return nil
		},
	}
}

func newStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show timer state and recorded laps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, t, found, err := loadTimer(*configPath)
			if err != nil {
				return err
			}
			if !found {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no timer in progress")
				return nil
			}
			snap := t.Snapshot()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "state=%s elapsed=%s remaining=%s\n",
				snap.State, formatClock(snap.ElapsedSeconds), formatClock(remainingSeconds(snap)))
			if snap.Instrument != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "instrument=%s\n", snap.Instrument)
			}
			for _, lap := range snap.Laps {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "lap %d\t%s\t%s\t%dmin\t%s-%s\n",
					lap.LapNumber, lap.ItemType, lap.ItemName, lap.TimeSpentMinutes, lap.StartedAt, lap.EndedAt)
			}
			return nil
		},
	}
}

func newLapCmd(configPath *string) *cobra.Command {
	var itemType, itemName, difficulty, notes string
	var tempo int
	cmd := &cobra.Command{
		Use:   "lap --name <item> --type <type>",
		Short: "Record what was practiced since the last lap",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(itemName) == "" {
				return fmt.Errorf("--name is required")
			}
			_, t, found, err := loadTimer(*configPath)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no timer in progress")
			}

			in := timer.LapInput{ItemType: itemType, ItemName: itemName, Notes: notes}
			if tempo > 0 {
				in.TempoBPM = &tempo
			}
			if difficulty != "" {
				in.DifficultyLevel = &difficulty
			}
			lap, err := t.AddLap(in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "lap %d: %s (%d min)\n", lap.LapNumber, lap.ItemName, lap.TimeSpentMinutes)
			return nil
		},
	}
	cmd.Flags().StringVar(&itemName, "name", "", "item name")
	cmd.Flags().StringVar(&itemType, "type", "piece", "item type: scale|piece|technique|exercise|warmup|other")
	cmd.Flags().IntVar(&tempo, "tempo", 0, "tempo in BPM")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "difficulty: beginner|intermediate|advanced")
	cmd.Flags().StringVar(&notes, "notes", "", "lap notes")
	return cmd
}

func newStopCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Discard the timer without saving",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, t, found, err := loadTimer(*configPath)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no timer in progress")
			}
			if err := t.Stop(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "timer discarded")
			return nil
		},
	}
}

func newSaveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Submit the completed session to the backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, t, found, err := loadTimer(*configPath)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no timer in progress")
			}
			if cfg.Token == "" {
				return fmt.Errorf("not logged in; run `practice login` first")
			}

			api := client.New(cfg.BaseURL, cfg.Token)
			created, err := submit.NewSubmitter(api).Submit(context.Background(), t)
			if err != nil {
				var partial *submit.PartialError
				if errors.As(err, &partial) {
					return fmt.Errorf("%w; run `practice save` again to send the remaining laps", partial)
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session saved: %s\n", created.ID)
			return nil
		},
	}
}

// runClock ticks the timer in the foreground until the goal is reached or
// the user interrupts, which pauses instead of discarding.
func runClock(cmd *cobra.Command, t *timer.Timer) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-signals:
			if err := t.Pause(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\npaused at %s; `practice lap` records an item, `practice resume` continues\n", formatClock(t.Elapsed()))
			return nil
		case <-ticker.C:
			if err := t.Tick(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\r%s / %s", formatClock(t.Elapsed()), formatClock(t.Elapsed()+t.Remaining()))
			if t.State() == timer.Completed {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\ngoal reached; `practice lap` records items, `practice save` submits")
				return nil
			}
		}
	}
}

func remainingSeconds(snap timer.Snapshot) int {
	if snap.GoalSeconds < snap.ElapsedSeconds {
		return 0
	}
	return snap.GoalSeconds - snap.ElapsedSeconds
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
