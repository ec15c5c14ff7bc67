package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axwifi/musched/config"
	"github.com/axwifi/musched/core/roundsched"
	"github.com/axwifi/musched/infra/solver"
	"github.com/axwifi/musched/pkg/export"
)

var (
	scheduleFormat string
	scheduleOut    string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Build and solve one period of the deadline schedule",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleFormat, "format", "json", "output format: json or csv")
	scheduleCmd.Flags().StringVar(&scheduleOut, "out", "", "output file, stdout when empty")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Schedule.TrafficFile == "" {
		return fmt.Errorf("schedule.traffic_file is required")
	}
	traffic, err := roundsched.LoadTraffic(cfg.Schedule.TrafficFile)
	if err != nil {
		return fmt.Errorf("traffic file: %w", err)
	}
	var ext roundsched.Solver
	if cfg.Schedule.Backend == roundsched.BackendILP {
		ext, err = solver.NewRunner(cfg.Schedule.Solver)
		if err != nil {
			return fmt.Errorf("ilp solver: %w", err)
		}
	}
	gen, err := roundsched.NewGenerator(cfg.Coordinator.ChannelWidthMHz, traffic, cfg.Schedule.Round(), ext)
	if err != nil {
		return fmt.Errorf("schedule generator: %w", err)
	}
	schedule := gen.BuildSchedule(0)
	matching, err := gen.Solve(schedule, 0)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	out := os.Stdout
	if scheduleOut != "" {
		f, err := os.Create(scheduleOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	entries := export.Entries(schedule, matching)
	switch scheduleFormat {
	case "json":
		return export.WriteJSON(out, entries)
	case "csv":
		return export.WriteCSV(out, entries)
	}
	return fmt.Errorf("unknown format %q", scheduleFormat)
}
