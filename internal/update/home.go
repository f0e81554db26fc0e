package update

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/editor"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/tasks"
	"github.com/sandeepkv93/taskmaster/internal/views"
)

const (
	formTitleRequired = "Title is required."
	statusTTL         = 3 * time.Second
)

func (m Model) handleHomeKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.controller == nil {
		return m, nil
	}
	if m.Confirm.Active {
		return m.handleConfirmKey(msg)
	}
	if m.Palette.Active {
		if msg.String() == m.Keys.Help {
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
		return m.handlePaletteKey(msg)
	}
	if m.Form.Active {
		return m.handleFormKey(msg)
	}
	if task, ok := m.SelectedTask(); ok {
		if ed, ok := m.editors[task.ID]; ok && ed.Editing() {
			return m.routeToEditor(msg, task)
		}
	}

	switch msg.String() {
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
		return m, nil
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active"}
		return m, m.commandInput.Focus()
	case m.Keys.NewTask, "n":
		return m.focusForm(formTitle)
	case m.Keys.Reload:
		return m.reload()
	case m.Keys.Logout:
		return m.logout()
	case m.Keys.Copy:
		return m.copySelected()
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	case "g", "home":
		m.Cursor = 0
		return m, nil
	case "G", "end":
		m.Cursor = max(m.controller.Len()-1, 0)
		return m, nil
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	if task, ok := m.SelectedTask(); ok {
		return m.routeToEditor(msg, task)
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	n := m.controller.Len()
	if n == 0 {
		m.Cursor = 0
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), n-1)
}

func (m Model) editorFor(id model.ID) editor.Editor {
	if ed, ok := m.editors[id]; ok {
		return ed
	}
	return editor.New(id).SetWidth(views.PaneWidth(m.width) - 8)
}

func (m Model) routeToEditor(msg tea.KeyMsg, task model.Task) (Model, tea.Cmd) {
	ed, intent, cmd := m.editorFor(task.ID).Update(msg, task)
	m.editors[task.ID] = ed
	next, intentCmd := m.handleIntent(intent, task)
	return next, tea.Batch(cmd, intentCmd)
}

func (m Model) handleIntent(intent editor.Intent, task model.Task) (Model, tea.Cmd) {
	switch intent.Kind {
	case editor.IntentSave:
		cmd, err := m.controller.Update(intent.ID, intent.Patch)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: "saving..."}
		return m, cmd
	case editor.IntentToggle:
		cmd, err := m.controller.ToggleComplete(intent.ID)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		return m, cmd
	case editor.IntentDelete:
		m.Confirm = ConfirmState{Active: true, TaskID: task.ID, Title: task.Title}
		return m, nil
	case editor.IntentCancel:
		m.Status = StatusBar{Text: "edit cancelled"}
		return m, nil
	}
	return m, nil
}

// handleConfirmKey answers the pending delete question. Anything but an
// explicit yes keeps the task.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m.requestDelete(m.Confirm.TaskID, tasks.Confirmed)
	case "n", "N", "esc", "enter":
		return m.requestDelete(m.Confirm.TaskID, tasks.Declined)
	}
	return m, nil
}

func (m Model) requestDelete(id model.ID, confirm tasks.ConfirmFunc) (Model, tea.Cmd) {
	m.Confirm = ConfirmState{}
	cmd, err := m.controller.Delete(id, confirm)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if cmd == nil {
		m.Status = StatusBar{Text: "delete cancelled"}
		return m, nil
	}
	m.Status = StatusBar{Text: "deleting..."}
	return m, cmd
}

func (m Model) focusForm(f formField) (Model, tea.Cmd) {
	m.Form.Active = true
	m.Form.focus = f
	if f == formTitle {
		m.Form.description.Blur()
		return m, m.Form.title.Focus()
	}
	m.Form.title.Blur()
	return m, m.Form.description.Focus()
}

func (m Model) resetForm() Model {
	m.Form.title.SetValue("")
	m.Form.description.SetValue("")
	m.Form.Hint = ""
	return m
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		m.Form.Active = false
		m.Form.Hint = ""
		m.controller.ClearErr()
		m.Form.title.Blur()
		m.Form.description.Blur()
		return m, nil
	}
	// The form is disabled while a create is in flight.
	if m.controller.Submitting() {
		return m, nil
	}
	switch key {
	case "tab", "shift+tab":
		if m.Form.focus == formTitle {
			return m.focusForm(formDescription)
		}
		return m.focusForm(formTitle)
	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	if m.Form.focus == formTitle {
		m.Form.title, cmd = m.Form.title.Update(msg)
		if strings.TrimSpace(m.Form.title.Value()) != "" {
			m.Form.Hint = ""
		}
	} else {
		m.Form.description, cmd = m.Form.description.Update(msg)
	}
	return m, cmd
}

func (m Model) submitForm() (Model, tea.Cmd) {
	title, description := m.FormDraft()
	next, cmd, err := m.createTask(title, description, true)
	if errors.Is(err, tasks.ErrEmptyTitle) {
		m.Form.Hint = formTitleRequired
		return m, nil
	}
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	next.Form.Hint = ""
	return next, cmd
}

// formCreatedMsg marks a create issued by the new-task form. Only those
// results clear the form's draft.
type formCreatedMsg struct {
	tasks.CreatedMsg
}

func (m Model) createTask(title, description string, fromForm bool) (Model, tea.Cmd, error) {
	cmd, err := m.controller.Create(title, description)
	if err != nil {
		return m, nil, err
	}
	if fromForm {
		create := cmd
		cmd = func() tea.Msg {
			msg := create()
			if created, ok := msg.(tasks.CreatedMsg); ok {
				return formCreatedMsg{created}
			}
			return msg
		}
	}
	m.Status = StatusBar{Text: views.AddingLabel}
	return m, tea.Batch(cmd, m.spinner.Tick), nil
}

func (m Model) reload() (Model, tea.Cmd) {
	cmd := m.controller.Load()
	if cmd == nil {
		return m, nil
	}
	m.Status = StatusBar{Text: "reloading..."}
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// copySelected writes the selected title to the clipboard off the UI loop;
// the system clipboard may shell out to xclip or pbcopy.
func (m Model) copySelected() (Model, tea.Cmd) {
	task, ok := m.SelectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m, nil
	}
	write, title := m.copyText, task.Title
	return m, func() tea.Msg {
		if err := write(title); err != nil {
			return AppErrorMsg{Err: fmt.Errorf("clipboard unavailable: %w", err)}
		}
		return SetStatusMsg{Text: fmt.Sprintf("copied: %s", title)}
	}
}

func clearStatusAfter(text string) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return ClearStatusMsg{Text: text} })
}

// applyTaskResult folds a controller result into the view. Results from a
// controller that no longer owns the screen are ignored.
func (m Model) applyTaskResult(msg tea.Msg, fromForm bool) (Model, tea.Cmd) {
	if m.controller == nil || !m.controller.Apply(msg) {
		return m, nil
	}
	var ok bool
	switch typed := msg.(type) {
	case tasks.LoadedMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: m.controller.Err(), IsError: true}
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("loaded %d task(s)", m.controller.Len())}
			ok = true
		}
	case tasks.CreatedMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: m.controller.Err(), IsError: true}
			break
		}
		if fromForm {
			m = m.resetForm()
		}
		m.Status = StatusBar{Text: fmt.Sprintf("added: %s", typed.Task.Title)}
		ok = true
	case tasks.UpdatedMsg:
		if typed.Err == nil {
			m.Status = StatusBar{Text: fmt.Sprintf("updated: %s", typed.Task.Title)}
			ok = true
		} else if m.Status.Text == "saving..." {
			m.Status = StatusBar{}
		}
	case tasks.DeletedMsg:
		if typed.Err == nil {
			m.Status = StatusBar{Text: "task deleted"}
			ok = true
		} else if m.Status.Text == "deleting..." {
			m.Status = StatusBar{}
		}
	}
	m.pruneEditors()
	m.moveCursor(0)
	if !ok {
		return m, nil
	}
	return m, clearStatusAfter(m.Status.Text)
}

func (m *Model) pruneEditors() {
	list := m.controller.Tasks()
	for id := range m.editors {
		if !slices.ContainsFunc(list, func(t model.Task) bool { return t.ID == id }) {
			delete(m.editors, id)
		}
	}
	if m.Confirm.Active && !slices.ContainsFunc(list, func(t model.Task) bool { return t.ID == m.Confirm.TaskID }) {
		m.Confirm = ConfirmState{}
	}
}

// taskAt resolves a 1-based list position.
func (m Model) taskAt(pos int) (model.Task, error) {
	list := m.Tasks()
	if pos < 1 || pos > len(list) {
		return model.Task{}, fmt.Errorf("no task #%d", pos)
	}
	return list[pos-1], nil
}
