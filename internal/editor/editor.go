// Package editor holds the per-task edit session: a Viewing/Editing state
// machine that turns keys into intents for the task controller.
package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskmaster/internal/model"
)

const HintTitleRequired = "title is required"

type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentSave
	IntentCancel
	IntentToggle
	IntentDelete
)

// Intent is what the editor asks its owner to do. Only IntentSave carries a
// patch.
type Intent struct {
	Kind  IntentKind
	ID    model.ID
	Patch model.Patch
}

type field int

const (
	fieldTitle field = iota
	fieldDescription
)

type Editor struct {
	id          model.ID
	state       State
	title       textinput.Model
	description textarea.Model
	focus       field
	hint        string
}

func New(id model.ID) Editor {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.Prompt = ""
	title.CharLimit = 200

	description := textarea.New()
	description.Placeholder = "Description (optional)"
	description.ShowLineNumbers = false
	description.CharLimit = 0
	description.SetHeight(3)

	return Editor{
		id:          id,
		state:       Viewing,
		title:       title,
		description: description,
	}
}

func (e Editor) ID() model.ID { return e.id }

func (e Editor) State() State { return e.state }

func (e Editor) Editing() bool { return e.state == Editing }

func (e Editor) Hint() string { return e.hint }

func (e Editor) DraftTitle() string { return e.title.Value() }

func (e Editor) DraftDescription() string { return e.description.Value() }

// Begin enters Editing with drafts seeded from task.
func (e Editor) Begin(task model.Task) (Editor, tea.Cmd) {
	e.state = Editing
	e.hint = ""
	e.title.SetValue(task.Title)
	e.title.CursorEnd()
	e.description.SetValue(task.Description)
	return e.focusField(fieldTitle)
}

func (e Editor) SetDraft(title, description string) Editor {
	e.title.SetValue(title)
	e.description.SetValue(description)
	return e
}

func (e Editor) SetWidth(width int) Editor {
	if width <= 0 {
		return e
	}
	e.title.Width = width
	e.description.SetWidth(width)
	return e
}

// Save leaves Editing and returns a save intent. An empty trimmed title keeps
// the editor in Editing with a hint and no intent.
func (e Editor) Save() (Editor, Intent) {
	if e.state != Editing {
		return e, Intent{}
	}
	title := strings.TrimSpace(e.title.Value())
	if title == "" {
		e.hint = HintTitleRequired
		return e, Intent{}
	}
	description := strings.TrimSpace(e.description.Value())
	e = e.reset()
	return e, Intent{
		Kind: IntentSave,
		ID:   e.id,
		Patch: model.Patch{
			Title:       model.StringPtr(title),
			Description: model.StringPtr(description),
		},
	}
}

func (e Editor) Cancel() Editor {
	return e.reset()
}

func (e Editor) reset() Editor {
	e.state = Viewing
	e.hint = ""
	e.title.Blur()
	e.description.Blur()
	e.title.SetValue("")
	e.description.SetValue("")
	e.focus = fieldTitle
	return e
}

func (e Editor) focusField(f field) (Editor, tea.Cmd) {
	e.focus = f
	if f == fieldTitle {
		e.description.Blur()
		return e, e.title.Focus()
	}
	e.title.Blur()
	return e, e.description.Focus()
}

// Update routes a key to the edit session. current is the task as the
// controller sees it now and is what a new session is seeded from.
func (e Editor) Update(msg tea.Msg, current model.Task) (Editor, Intent, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if e.state == Viewing {
		if !ok {
			return e, Intent{}, nil
		}
		switch keyMsg.String() {
		case "e":
			next, cmd := e.Begin(current)
			return next, Intent{}, cmd
		case " ", "space", "x":
			return e, Intent{Kind: IntentToggle, ID: e.id}, nil
		case "d":
			return e, Intent{Kind: IntentDelete, ID: e.id}, nil
		}
		return e, Intent{}, nil
	}

	if ok {
		switch keyMsg.String() {
		case "enter":
			next, intent := e.Save()
			return next, intent, nil
		case "alt+enter":
			next, cmd := e.focusField(fieldDescription)
			next.description.InsertString("\n")
			return next, Intent{}, cmd
		case "esc":
			return e.Cancel(), Intent{Kind: IntentCancel, ID: e.id}, nil
		case "tab", "shift+tab":
			next := fieldDescription
			if e.focus == fieldDescription {
				next = fieldTitle
			}
			ed, cmd := e.focusField(next)
			return ed, Intent{}, cmd
		}
	}

	var cmd tea.Cmd
	if e.focus == fieldTitle {
		e.title, cmd = e.title.Update(msg)
		if strings.TrimSpace(e.title.Value()) != "" {
			e.hint = ""
		}
	} else {
		e.description, cmd = e.description.Update(msg)
	}
	return e, Intent{}, cmd
}

func (e Editor) TitleView() string { return e.title.View() }

func (e Editor) DescriptionView() string { return e.description.View() }
