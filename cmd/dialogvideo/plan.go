package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/dialogvideo/internal/config"
	"github.com/ivlev/dialogvideo/internal/engine"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve the timeline and cast without rendering",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := ctx.ensureProject()
			if err != nil {
				return err
			}
			cfg := &config.Config{}
			vp := engine.NewVideoProject(cfg, proj, nil)
			plan := engine.BuildPlan(vp.Timeline, vp.Director, cfg.Width, cfg.Height, cfg.FPS)

			if output != "" {
				if err := engine.WritePlan(output, plan); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[+++] Plan: %s\n", output)
				return nil
			}
			data, err := yaml.Marshal(plan)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the plan to a YAML file instead of stdout")
	return cmd
}
