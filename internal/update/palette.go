package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/commands"
	"github.com/sandeepkv93/taskmaster/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	parsed, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var out tea.Cmd
	res, err := commands.Execute(parsed, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			next, cmd, err := m.createTask(a.Title, a.Description, false)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			m, out = next, cmd
			return commands.Result{Message: fmt.Sprintf("adding: %s", a.Title)}, nil
		},
		Edit: func(e commands.EditArgs) (commands.Result, error) {
			task, err := m.taskAt(e.Position)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			cmd, err := m.controller.Update(task.ID, model.Patch{Title: model.StringPtr(strings.TrimSpace(e.Title))})
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			out = cmd
			return commands.Result{Message: fmt.Sprintf("renaming #%d", e.Position)}, nil
		},
		Done: func(t commands.TargetArgs) (commands.Result, error) {
			task, err := m.taskAt(t.Position)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			if task.Completed {
				return commands.Result{Message: fmt.Sprintf("#%d is already completed", t.Position)}, nil
			}
			cmd, err := m.controller.Update(task.ID, model.Patch{Completed: model.BoolPtr(true)})
			if err != nil {
				return commands.Result{}, err
			}
			out = cmd
			return commands.Result{Message: fmt.Sprintf("completing #%d", t.Position)}, nil
		},
		Delete: func(t commands.TargetArgs) (commands.Result, error) {
			task, err := m.taskAt(t.Position)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			m.Cursor = t.Position - 1
			m.Confirm = ConfirmState{Active: true, TaskID: task.ID, Title: task.Title}
			return commands.Result{Message: "confirm delete"}, nil
		},
		Reload: func() (commands.Result, error) {
			m, out = m.reload()
			return commands.Result{Message: "reloading..."}, nil
		},
		Logout: func() (commands.Result, error) {
			m, out = m.logout()
			return commands.Result{Message: "signed out"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, out
}
