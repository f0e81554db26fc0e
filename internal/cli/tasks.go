package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/tasks"
	"github.com/sandeepkv93/taskmaster/internal/views"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errNoSuchTask = errors.New("no such task")

// session is one headless exchange with the task store. Every command loads
// the list first so positions and ids resolve against server state.
type session struct {
	ctrl *tasks.Controller
}

func (a *app) openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := a.stderrLogger(cfg)
	remote, err := a.newRemote(cfg, logger)
	if err != nil {
		return nil, err
	}
	ctrl := tasks.New(remote, tasks.WithLogger(logger))
	if msg, ok := tasks.Settle(ctrl, ctrl.Load()).(tasks.LoadedMsg); ok && msg.Err != nil {
		return nil, fmt.Errorf("%s: %w", tasks.LoadFailedText, msg.Err)
	}
	return &session{ctrl: ctrl}, nil
}

// resolve accepts a task id or a 1-based list position such as 2 or #2. An
// exact id match wins over a position.
func (s *session) resolve(ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if task, ok := s.ctrl.Find(model.ID(ref)); ok {
		return task, nil
	}
	pos, err := strconv.Atoi(strings.TrimPrefix(ref, "#"))
	if err != nil || pos < 1 || pos > s.ctrl.Len() {
		return model.Task{}, fmt.Errorf("%w: %q", errNoSuchTask, ref)
	}
	return s.ctrl.Tasks()[pos-1], nil
}

func (s *session) update(id model.ID, patch model.Patch) (model.Task, error) {
	cmd, err := s.ctrl.Update(id, patch)
	if err != nil {
		return model.Task{}, err
	}
	msg, _ := tasks.Settle(s.ctrl, cmd).(tasks.UpdatedMsg)
	if msg.Err != nil {
		return model.Task{}, fmt.Errorf("update %s: %w", id, msg.Err)
	}
	return msg.Task, nil
}

func (a *app) listCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in server order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			return writeTasks(cmd, output, s.ctrl.Tasks())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json, yaml")
	return cmd
}

func writeTasks(cmd *cobra.Command, format string, list []model.Task) error {
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		if len(list) == 0 {
			_, err := fmt.Fprintln(out, views.EmptyText)
			return err
		}
		t := table.New().Headers("#", "ID", "STATUS", "TITLE", "DESCRIPTION")
		for i, task := range list {
			status := views.PendingBadge
			if task.Completed {
				status = views.CompletedBadge
			}
			desc, _, _ := strings.Cut(task.Description, "\n")
			t.Row(strconv.Itoa(i+1), task.ID.String(), status, task.Title, desc)
		}
		_, err := fmt.Fprintln(out, t.Render())
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func (a *app) addCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			create, err := s.ctrl.Create(strings.Join(args, " "), description)
			if err != nil {
				return err
			}
			msg, _ := tasks.Settle(s.ctrl, create).(tasks.CreatedMsg)
			if msg.Err != nil {
				return fmt.Errorf("%s: %w", tasks.CreateFailedText, msg.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s: %s\n", msg.Task.ID, msg.Task.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "edit <id|#n>",
		Short: "Change a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.Patch
			if cmd.Flags().Changed("title") {
				patch.Title = model.StringPtr(strings.TrimSpace(title))
			}
			if cmd.Flags().Changed("description") {
				patch.Description = model.StringPtr(strings.TrimSpace(description))
			}
			if err := patch.Validate(); err != nil {
				return err
			}
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			task, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			updated, err := s.update(task.ID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s: %s\n", updated.ID, updated.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func (a *app) doneCmd() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "done <id|#n>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			task, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			updated, err := s.update(task.ID, model.Patch{Completed: model.BoolPtr(!undo)})
			if err != nil {
				return err
			}
			status := views.PendingBadge
			if updated.Completed {
				status = views.CompletedBadge
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", status, updated.ID, updated.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the task pending again")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id|#n>",
		Aliases: []string{"delete"},
		Short:   "Delete a task after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			task, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			confirm := tasks.ConfirmFunc(tasks.Confirmed)
			if !yes {
				confirm = promptConfirm(cmd)
			}
			del, err := s.ctrl.Delete(task.ID, confirm)
			if err != nil {
				return err
			}
			if del == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "kept")
				return nil
			}
			msg, _ := tasks.Settle(s.ctrl, del).(tasks.DeletedMsg)
			if msg.Err != nil {
				return fmt.Errorf("delete %s: %w", task.ID, msg.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s: %s\n", task.ID, task.Title)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// promptConfirm asks on the command's stdin. Anything but y or yes declines.
func promptConfirm(cmd *cobra.Command) tasks.ConfirmFunc {
	return func(task model.Task) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "%q\n%s [y/N] ", task.Title, views.ConfirmPrompt)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
