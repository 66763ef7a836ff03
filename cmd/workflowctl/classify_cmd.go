package main

import (
	"encoding/json"
	"strings"

	"staff-absence-backend/internal/classifier"
	"staff-absence-backend/internal/config"

	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var workflowPath string

	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Print the intent a staff message is classified as",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := config.LoadWorkflow(workflowPath)
			if err != nil {
				return err
			}

			intent := classifier.New(workflow.Classifier, nil).Classify(strings.Join(args, " "))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(intent)
		},
	}

	cmd.Flags().StringVar(&workflowPath, "workflow", defaultWorkflowPath, "workflow configuration file")

	return cmd
}
