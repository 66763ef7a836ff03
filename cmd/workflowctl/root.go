package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultWorkflowPath = "config/workflow.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "workflowctl",
		Short:         "Operator tool for the staff absence workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newHashPasswordCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newSimulateCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
