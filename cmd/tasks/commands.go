package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"taskboard/internal/config"
	dom "taskboard/internal/domain"
	"taskboard/internal/logging"
	"taskboard/internal/pipeline"
	"taskboard/internal/render"
	"taskboard/internal/transport"

	"github.com/spf13/cobra"
)

const (
	statusAll     = "all"
	statusDone    = "done"
	statusPending = "pending"
)

// errReported marks failures already written to stderr.
var errReported = errors.New("tasks: load failed")

type rootOptions struct {
	baseURL string
	output  string
	quiet   bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "tasks",
		Short:         "List and create tasks on a taskboard server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Tasks endpoint (overrides API_BASE_URL)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", render.FormatTable, "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress the unmocked API call warning")

	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	return rootCmd
}

// setup loads the client config and applies flag overrides.
func (o *rootOptions) setup(cmd *cobra.Command) (*transport.Client, *slog.Logger, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if o.baseURL != "" {
		cfg.API.BaseURL = o.baseURL
	}
	var suppress logging.SuppressFunc
	if o.quiet {
		suppress = logging.SuppressMessages(transport.UnmockedCallWarning)
	}
	log := logging.New(cfg.Log, cmd.ErrOrStderr(), suppress)
	return transport.New(cfg.API, transport.WithLogger(log)), log, nil
}

func listCmd(opts *rootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Load tasks and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != statusAll && status != statusDone && status != statusPending {
				return fmt.Errorf("--status must be one of %s, %s, %s", statusAll, statusDone, statusPending)
			}
			client, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			res := pipeline.New(client, log).LoadTasks(cmd.Context())
			if !res.OK() {
				fmt.Fprintln(cmd.ErrOrStderr(), res.Error)
				return errReported
			}
			tasks := res.Tasks
			if status != statusAll {
				tasks = pipeline.FilterTasksByStatus(tasks, status == statusDone)
			}
			return render.Tasks(cmd.OutOrStdout(), opts.output, tasks)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", statusAll, "Filter by status (all, done, pending)")
	return cmd
}

func addCmd(opts *rootOptions) *cobra.Command {
	var completed bool
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			rec, err := client.CreateOne(cmd.Context(), map[string]any{
				"name":      args[0],
				"completed": completed,
			})
			if err != nil {
				return err
			}
			return render.Tasks(cmd.OutOrStdout(), opts.output, []dom.PresentationTask{pipeline.Present(rec)})
		},
	}
	cmd.Flags().BoolVar(&completed, "completed", false, "Create the task already completed")
	return cmd
}
