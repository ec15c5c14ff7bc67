package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axwifi/musched/core/ru"
)

var (
	planWidth    int
	planStations int
	planCentral  bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the resource unit plan for a channel width and station count",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().IntVar(&planWidth, "width", 20, "channel width in MHz")
	planCmd.Flags().IntVar(&planStations, "stations", 1, "number of stations to serve")
	planCmd.Flags().BoolVar(&planCentral, "central", false, "allow central 26-tone units")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	plan, err := ru.NewPlan(planWidth, planStations, planCentral)
	if err != nil {
		return err
	}
	tones, err := ru.ChannelTones(plan.WidthMHz)
	if err != nil {
		return err
	}
	fmt.Printf("channel: %d MHz (%d tones)\n", plan.WidthMHz, tones)
	fmt.Printf("partition: %d x %s", plan.Count, plan.Type)
	if plan.Central26 > 0 {
		fmt.Printf(" + %d central RU26", plan.Central26)
	}
	fmt.Printf(" (capacity %d, %d tones used)\n", plan.Capacity(), plan.TotalTones())
	for _, spec := range plan.Specs() {
		fmt.Printf("  %-6s index %-2d primary80=%v\n", spec.Type, spec.Index, spec.Primary80)
	}
	for _, spec := range plan.CentralSpecs() {
		fmt.Printf("  %-6s index %-2d central\n", spec.Type, spec.Index)
	}
	return nil
}
