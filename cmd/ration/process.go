package main

import (
	"context"
	"fmt"

	"github.com/ration-ai/ration/pkg/config"
	"github.com/ration-ai/ration/pkg/workflow"
	"github.com/spf13/cobra"
)

func newProcessCmd() *cobra.Command {
	var (
		configPath string
		outputPath string
		taskArg    string
	)

	cmd := &cobra.Command{
		Use:   "process <input-file>",
		Short: "Analyze a file and write a markdown report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := workflow.ParseTask(taskArg)
			if err != nil {
				return err
			}

			cfg, path, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			d, err := buildDeps(cfg, path)
			if err != nil {
				return err
			}
			defer d.Close()

			templates, err := workflow.LoadTemplates(config.TasksPath(path))
			if err != nil {
				return err
			}

			input := args[0]
			output := outputPath
			if output == "" {
				output = workflow.DefaultOutputPath(input)
			}

			wf := workflow.New(d.gw, templates)
			res, err := wf.Process(context.Background(), input, output, task)
			if err != nil {
				return err
			}

			fmt.Printf("%s -> %s\n", input, output)
			fmt.Printf("[%s] %s\n", res.Backend, res.Reason)
			if res.Cost > 0 {
				fmt.Printf("Cost: $%.4f\n", res.Cost)
			}
			fmt.Printf("Budget remaining: $%.2f\n", res.Budget.Remaining)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "report path (default <input>.out.md)")
	cmd.Flags().StringVarP(&taskArg, "task", "t", "auto", "task type: code, architecture, review, auto")
	return cmd
}
