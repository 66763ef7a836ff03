package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"staff-absence-backend/internal/app"
	"staff-absence-backend/internal/clients"
	"staff-absence-backend/internal/config"
	"staff-absence-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type simulateOptions struct {
	WorkflowPath string
	Scenario     string
	Timezone     string
	Verbose      bool
}

type scenarioStep struct {
	From string
	Text string
}

type scenario struct {
	Description string
	Steps       []scenarioStep
}

// scenarios are built against the configured staff directory: the first
// member reports the absence and the others answer
func scenarios(staff []string) map[string]scenario {
	absent := staff[0]
	others := staff[1:]

	filled := scenario{
		Description: "first acceptance fills the slot, later ones are too late",
		Steps:       []scenarioStep{{From: absent, Text: "明日、体調不良のため欠勤させていただきます。"}},
	}
	for _, id := range others {
		filled.Steps = append(filled.Steps, scenarioStep{From: id, Text: "代わりに出勤します"})
	}

	unfilled := scenario{
		Description: "every candidate declines and recruitment is exhausted",
		Steps:       []scenarioStep{{From: absent, Text: "今日熱で欠勤します"}},
	}
	for _, id := range others {
		unfilled.Steps = append(unfilled.Steps, scenarioStep{From: id, Text: "ごめんなさい、代わりは無理です"})
	}

	unknown := scenario{
		Description: "messages from outside the staff directory",
		Steps: []scenarioStep{
			{From: "U-unknown", Text: "本日欠勤します"},
			{From: absent, Text: "おはようございます"},
		},
	}

	return map[string]scenario{
		"filled":   filled,
		"unfilled": unfilled,
		"unknown":  unknown,
	}
}

func newSimulateCmd() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate [--scenario filled|unfilled|unknown|all]",
		Short: "Run scripted conversations on the in-memory store and print the outcomes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			workflow, err := config.LoadWorkflow(opts.WorkflowPath)
			if err != nil {
				return err
			}
			if len(workflow.Staff) < 2 {
				return fmt.Errorf("simulation needs at least two staff members, got %d", len(workflow.Staff))
			}

			ids := make([]string, 0, len(workflow.Staff))
			for _, member := range workflow.Staff {
				ids = append(ids, member.ID)
			}
			all := scenarios(ids)

			names := []string{opts.Scenario}
			if opts.Scenario == "all" {
				names = names[:0]
				for name := range all {
					names = append(names, name)
				}
				sort.Strings(names)
			}

			log := logrus.New()
			log.SetOutput(io.Discard)
			if opts.Verbose {
				log.SetOutput(cmd.ErrOrStderr())
				log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			}

			for _, name := range names {
				sc, ok := all[name]
				if !ok {
					return fmt.Errorf("unknown scenario %q", name)
				}
				if err := runScenario(cmd.Context(), cmd.OutOrStdout(), name, sc, workflow, opts.Timezone, logrus.NewEntry(log)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.WorkflowPath, "workflow", defaultWorkflowPath, "workflow configuration file")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "all", "scenario to run")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "Asia/Tokyo", "timezone used for dates in messages")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log rendered notifications to stderr")

	return cmd
}

func runScenario(ctx context.Context, out io.Writer, name string, sc scenario, workflow *config.WorkflowConfig, timezone string, log *logrus.Entry) error {
	if ctx == nil {
		ctx = context.Background()
	}

	transport := clients.NewLogTransport(log.WithField("scenario", name))
	a, err := app.New(ctx, &config.Config{
		Timezone:    timezone,
		StoreDriver: config.StoreMemory,
	}, workflow, app.Options{
		Transports: map[service.Channel]service.Transport{
			service.ChannelStaff:    transport,
			service.ChannelCustomer: transport,
			service.ChannelAdmin:    transport,
		},
		Logger: log,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(out, "== %s: %s\n", name, sc.Description)
	for _, step := range sc.Steps {
		result, err := a.Processor.Process(ctx, service.InboundEvent{
			EventID:      uuid.NewString(),
			SourceUserID: step.From,
			RawText:      step.Text,
			ReceivedAt:   time.Now(),
		})
		if err != nil {
			return fmt.Errorf("%s: %q from %s: %w", name, step.Text, step.From, err)
		}
		fmt.Fprintf(out, "%-12s %-40s -> %s\n", step.From, step.Text, result.Outcome)
	}

	stats, err := a.Workflow.Stats()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
