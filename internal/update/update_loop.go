package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/tasks"
	"github.com/sandeepkv93/taskmaster/internal/views"
)

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncDetail()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(typed.Width, typed.Height)
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Screen == ScreenLogin {
			return m.handleLoginKey(typed)
		}
		return m.handleHomeKey(typed)
	case formCreatedMsg:
		return m.applyTaskResult(typed.CreatedMsg, true)
	case tasks.LoadedMsg, tasks.CreatedMsg, tasks.UpdatedMsg, tasks.DeletedMsg:
		return m.applyTaskResult(msg, false)
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		if typed.Text == "" || typed.Text == m.Status.Text {
			m.Status = StatusBar{}
		}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.logger.Error("app error", "err", typed.Err)
		}
		return m, nil
	}
	return m.updateFocusedInput(msg)
}

// updateFocusedInput hands non-key messages such as cursor blinks to
// whichever input currently has focus.
func (m Model) updateFocusedInput(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.Screen == ScreenLogin && m.Login.focus == loginUsername:
		m.Login.username, cmd = m.Login.username.Update(msg)
	case m.Screen == ScreenLogin:
		m.Login.password, cmd = m.Login.password.Update(msg)
	case m.Palette.Active:
		m.commandInput, cmd = m.commandInput.Update(msg)
	case m.Form.Active && m.Form.focus == formTitle:
		m.Form.title, cmd = m.Form.title.Update(msg)
	case m.Form.Active:
		m.Form.description, cmd = m.Form.description.Update(msg)
	default:
		if task, ok := m.SelectedTask(); ok {
			if ed, ok := m.editors[task.ID]; ok && ed.Editing() {
				ed, _, cmd = ed.Update(msg, task)
				m.editors[task.ID] = ed
			}
		}
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	pane := views.PaneWidth(width)
	m.detail.Width = pane
	m.detail.Height = max(height-16, 6)
	m.detailKey = ""
	m.Form.title.Width = pane - 10
	m.Form.description.Width = pane - 10
	for id, ed := range m.editors {
		m.editors[id] = ed.SetWidth(pane - 8)
	}
}

func (m Model) busy() bool {
	return m.controller != nil && (m.controller.Loading() || m.controller.Submitting())
}

func (m Model) View() string {
	if m.Screen == ScreenLogin {
		return m.renderLoginView()
	}
	return m.renderHomeView()
}

func (m Model) statusLine() string {
	if m.Status.Text == "" {
		return ""
	}
	if m.Status.IsError {
		return fmt.Sprintf("status: error: %s", m.Status.Text)
	}
	return fmt.Sprintf("status: %s", m.Status.Text)
}

func (m Model) renderLoginView() string {
	return views.RenderApp(views.AppData{
		Header:     views.Title,
		Subheader:  views.Tagline,
		LeftPane:   views.RenderLoginPanel(views.LoginPanelData{UsernameView: m.Login.username.View(), PasswordView: m.Login.password.View(), ErrorText: m.Login.Err}),
		StatusLine: m.statusLine(),
		IsError:    m.Status.IsError,
		Footer:     "keys: tab next field | enter sign in | ctrl+c quit",
		Width:      m.width,
	})
}

func (m Model) renderHomeView() string {
	list := m.Tasks()
	header := fmt.Sprintf("%s | user: %s | tasks: %d", views.Title, m.Username, len(list))
	if m.busy() {
		header += " " + m.spinner.View()
	}

	formErr := ""
	submitting := false
	loading := true
	if m.controller != nil {
		formErr = m.controller.Err()
		submitting = m.controller.Submitting()
		loading = m.controller.Loading() && m.controller.Len() == 0
	}

	items := make([]views.TaskItemData, 0, len(list))
	for i, task := range list {
		item := views.TaskItemData{
			Position:    i + 1,
			Title:       task.Title,
			Description: task.Description,
			Completed:   task.Completed,
			Selected:    i == m.Cursor && !m.Form.Active,
		}
		if ed, ok := m.editors[task.ID]; ok && ed.Editing() {
			item.Editing = true
			item.TitleEditor = ed.TitleView()
			item.DescriptionEditor = ed.DescriptionView()
			item.Hint = ed.Hint()
		}
		items = append(items, item)
	}

	left := views.RenderTaskForm(views.FormPanelData{
		TitleView:       m.Form.title.View(),
		DescriptionView: m.Form.description.View(),
		Active:          m.Form.Active,
		Submitting:      submitting,
		Hint:            m.Form.Hint,
		ErrorText:       formErr,
	}) + "\n\n" + views.RenderTaskList(views.TaskListData{
		Loading:     loading,
		SpinnerView: m.spinner.View(),
		Items:       items,
	})

	detail := views.DetailPanelData{}
	if task, ok := m.SelectedTask(); ok {
		detail = views.DetailPanelData{Title: task.Title, Completed: task.Completed, ID: task.ID.String()}
		if task.Description != "" {
			detail.MarkdownView = m.detail.View()
		}
	}
	right := views.RenderDetailPanel(detail)
	if palette := views.RenderCommandPalette(m.Palette.Active, m.commandInput.Value()); palette != "" {
		right += "\n\n" + palette
	}
	right += m.renderHelpIfVisible()

	overlay := ""
	if m.Confirm.Active {
		overlay = views.RenderConfirm(m.Confirm.Title)
	}

	return views.RenderApp(views.AppData{
		Header:     header,
		Subheader:  views.Tagline,
		LeftPane:   left,
		RightPane:  right,
		Overlay:    overlay,
		StatusLine: m.statusLine(),
		IsError:    m.Status.IsError,
		Footer: fmt.Sprintf("keys: %s add | j/k move | e edit | x toggle | d delete | %s reload | %s copy | / cmd | %s logout | %s help | %s quit",
			m.Keys.NewTask, m.Keys.Reload, m.Keys.Copy, m.Keys.Logout, m.Keys.Help, m.Keys.Quit),
		Width: m.width,
	})
}

// syncDetail re-renders the markdown preview when the selection, its
// description or the pane width changed.
func (m *Model) syncDetail() {
	task, ok := m.SelectedTask()
	key := ""
	if ok {
		key = fmt.Sprintf("%s|%d|%s", task.ID, m.detail.Width, task.Description)
	}
	if key == m.detailKey {
		return
	}
	m.detailKey = key
	if !ok || task.Description == "" {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(views.RenderMarkdown(task.Description, m.detail.Width))
	m.detail.GotoTop()
}
