package main

import (
	"fmt"

	"github.com/helpcar/quotechat/internal/presentation/graph"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the wizard steps as a Mermaid flowchart",
	Long: `Prints every branch of the wizard as a Mermaid flowchart. With --problem and
--step, the steps already answered and the current one are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		problem, _ := cmd.Flags().GetString("problem")
		step, _ := cmd.Flags().GetString("step")

		var overlay *graph.Overlay
		if step != "" {
			s, err := domain.ParseStep(step)
			if err != nil {
				return err
			}
			var p domain.Problem
			if problem != "" {
				if p, err = domain.ParseProblem(problem); err != nil {
					return err
				}
			}
			overlay = graph.OverlayFor(p, s)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("problem", "", "Problem chosen by the session to highlight")
	graphCmd.Flags().String("step", "", "Current step of the session to highlight")
}
