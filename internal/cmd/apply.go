package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arubanetworks/central-cli/internal/actions"
	"github.com/arubanetworks/central-cli/internal/api"
	"github.com/arubanetworks/central-cli/internal/iocontext"
)

// newApplyCmd returns the apply command
func newApplyCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run declarative group tasks from a file",
		Long: strings.TrimSpace(`
Run a sequence of declarative group tasks from a YAML or JSON file.

Each task names an action (get_groups, get_group_mode, clone, create,
update, delete) plus its parameters. Tasks run in order; a task whose
response classifies as unchanged (HTTP 304, 400, 404) does not stop the
run, while a fatal response aborts the remaining tasks.
`),
		Example: strings.TrimSpace(`
  # Apply a task file
  central apply -f groups.yaml

  # Read tasks from stdin
  cat groups.yaml | central apply -f -

  # Machine-readable per-task results
  central apply -f groups.yaml --json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			data, err := readTaskFile(cmd, file)
			if err != nil {
				return err
			}

			tasks, err := actions.ParseTasks(data)
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			type taskResult struct {
				Task    int    `json:"task"`
				Action  string `json:"action"`
				Changed bool   `json:"changed"`
				Code    int    `json:"response_code"`
				Msg     any    `json:"msg"`
				Outcome string `json:"outcome"`
			}

			var results []taskResult
			changed := 0
			var fatal error

			for i, task := range tasks {
				res := actions.Run(ctx, client, task.Request())
				results = append(results, taskResult{
					Task:    i + 1,
					Action:  task.Action,
					Changed: res.Changed,
					Code:    res.Code,
					Msg:     res.Msg,
					Outcome: res.Outcome.String(),
				})
				if res.Changed {
					changed++
				}
				if res.Outcome == api.OutcomeFatal {
					fatal = resultError(res)
					break
				}
				if !isJSON(cmd) {
					ioStreams := iocontext.GetIO(ctx)
					status := "ok"
					if res.Changed {
						status = "changed"
					}
					_, _ = fmt.Fprintf(ioStreams.Out, "task %d (%s): %s [HTTP %d]\n", i+1, task.Action, status, res.Code)
				}
			}

			if isJSON(cmd) {
				if err := printJSON(cmd, map[string]any{
					"results": results,
					"changed": changed,
					"total":   len(tasks),
				}); err != nil {
					return err
				}
			} else if fatal == nil {
				printIfNotQuiet(cmd, "\n%d task(s), %d changed\n", len(tasks), changed)
			}

			return fatal
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Task file to apply ('-' for stdin; required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readTaskFile(cmd *cobra.Command, path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--file requires a file path")
	}
	if path == "-" {
		ioStreams := iocontext.GetIO(cmd.Context())
		data, err := io.ReadAll(ioStreams.In)
		if err != nil {
			return nil, fmt.Errorf("failed to read tasks from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %q: %w", path, err)
	}
	return data, nil
}
