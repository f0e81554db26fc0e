package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	Title          = "Task Master"
	Tagline        = "Manage your daily goals with elegance."
	LoadingText    = "Loading your tasks..."
	EmptyText      = "No tasks yet. Start by adding one above!"
	AddLabel       = "Add New Task"
	AddingLabel    = "Adding..."
	ConfirmPrompt  = "Are you sure you want to delete this task?"
	PendingBadge   = "Pending"
	CompletedBadge = "Completed"
)

var (
	doneTitleStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	selectedStyle  = lipgloss.NewStyle().Bold(true)
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type LoginPanelData struct {
	UsernameView string
	PasswordView string
	ErrorText    string
}

type FormPanelData struct {
	TitleView       string
	DescriptionView string
	Active          bool
	Submitting      bool
	Hint            string
	ErrorText       string
}

type TaskItemData struct {
	Position          int
	Title             string
	Description       string
	Completed         bool
	Selected          bool
	Editing           bool
	TitleEditor       string
	DescriptionEditor string
	Hint              string
}

type TaskListData struct {
	Loading     bool
	SpinnerView string
	Items       []TaskItemData
}

type DetailPanelData struct {
	Title        string
	Completed    bool
	ID           string
	MarkdownView string
}

type HelpPanelData struct {
	Screen   string
	Bindings []string
	HelpView string
}

func RenderLoginPanel(data LoginPanelData) string {
	var b strings.Builder
	b.WriteString("Welcome Back\n")
	b.WriteString(mutedStyle.Render("Sign in to continue to your account") + "\n\n")
	b.WriteString("Username\n")
	b.WriteString(data.UsernameView + "\n\n")
	b.WriteString("Password\n")
	b.WriteString(data.PasswordView + "\n\n")
	b.WriteString("[enter] Sign In  [tab] next field  [ctrl+c] quit")
	if data.ErrorText != "" {
		b.WriteString("\n\n" + hintStyle.Render(data.ErrorText))
	}
	return b.String()
}

func RenderTaskForm(data FormPanelData) string {
	var b strings.Builder
	b.WriteString(data.TitleView + "\n")
	b.WriteString(data.DescriptionView + "\n")
	switch {
	case data.Submitting:
		b.WriteString(mutedStyle.Render("[" + AddingLabel + "]"))
	case data.Active:
		b.WriteString("[enter] " + AddLabel + "  [tab] field  [esc] done")
	default:
		b.WriteString(mutedStyle.Render("[a] " + AddLabel))
	}
	if data.Hint != "" {
		b.WriteString("\n" + hintStyle.Render(data.Hint))
	}
	if data.ErrorText != "" {
		b.WriteString("\n" + hintStyle.Render(data.ErrorText))
	}
	return b.String()
}

func RenderTaskList(data TaskListData) string {
	if data.Loading {
		return strings.TrimSpace(data.SpinnerView + " " + LoadingText)
	}
	if len(data.Items) == 0 {
		return mutedStyle.Render(EmptyText)
	}
	var b strings.Builder
	for i, item := range data.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		renderTaskItem(&b, item)
	}
	return b.String()
}

func renderTaskItem(b *strings.Builder, item TaskItemData) {
	cursor := " "
	if item.Selected {
		cursor = ">"
	}
	if item.Editing {
		fmt.Fprintf(b, "%s %d. %s\n", cursor, item.Position, item.TitleEditor)
		b.WriteString(indent(item.DescriptionEditor, "     ") + "\n")
		b.WriteString(mutedStyle.Render("     [enter] save  [alt+enter] newline  [tab] field  [esc] cancel"))
		if item.Hint != "" {
			b.WriteString("\n     " + hintStyle.Render(item.Hint))
		}
		return
	}

	check, badge := "[ ]", pendingStyle.Render(PendingBadge)
	title := item.Title
	if item.Completed {
		check, badge = "[x]", completedStyle.Render(CompletedBadge)
		title = doneTitleStyle.Render(title)
	} else if item.Selected {
		title = selectedStyle.Render(title)
	}
	fmt.Fprintf(b, "%s %d. %s %s  %s", cursor, item.Position, check, title, badge)
	if desc := firstLine(item.Description); desc != "" {
		b.WriteString("\n       " + mutedStyle.Render(desc))
	}
}

func RenderDetailPanel(data DetailPanelData) string {
	if data.ID == "" {
		return "details:\n(no selection)"
	}
	status := PendingBadge
	if data.Completed {
		status = CompletedBadge
	}
	body := data.MarkdownView
	if body == "" {
		body = mutedStyle.Render("(no description)")
	}
	return fmt.Sprintf("details:\n%s\nstatus: %s\nid: %s\n\n%s", data.Title, status, data.ID, body)
}

func RenderConfirm(title string) string {
	return fmt.Sprintf("%s\n%q\n[y] delete  [n/esc] keep", ConfirmPrompt, title)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help (%s):\n%s\n%s",
		strings.ToLower(data.Screen),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
