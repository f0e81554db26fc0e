// Package tasks owns the local task collection and keeps it in step with the
// remote task store.
//
// Every operation validates on the caller's goroutine and returns a tea.Cmd
// that performs exactly one network call. The command's result message must
// be fed back through Controller.Apply on the same goroutine that owns the
// Controller; only Apply writes the collection, and only after a successful
// response.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskmaster/internal/logging"
	"github.com/sandeepkv93/taskmaster/internal/model"
)

const (
	LoadFailedText   = "Failed to load tasks. Please try again later."
	CreateFailedText = "Failed to add task. Please try again."
)

var (
	ErrEmptyTitle  = model.ErrEmptyTitle
	ErrUnknownTask = errors.New("tasks: unknown task")
	ErrClosed      = errors.New("tasks: controller closed")
	ErrIDMismatch  = errors.New("tasks: response id does not match request")
)

// Remote is the task store the Controller synchronizes with.
type Remote interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in model.NewTask) (model.Task, error)
	UpdateTask(ctx context.Context, id model.ID, patch model.Patch) (model.Task, error)
	DeleteTask(ctx context.Context, id model.ID) error
}

// ConfirmFunc is the synchronous yes/no gate consulted before a delete.
type ConfirmFunc func(model.Task) bool

func Confirmed(model.Task) bool { return true }

func Declined(model.Task) bool { return false }

var controllerSeq atomic.Uint64

type Controller struct {
	id     uint64
	remote Remote
	logger *log.Logger

	tasks      []model.Task
	loading    int
	submitting int
	inFlight   int
	loaded     bool
	errText    string
	closed     bool
}

type Option func(*Controller)

func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(remote Remote, opts ...Option) *Controller {
	c := &Controller{
		id:     controllerSeq.Add(1),
		remote: remote,
		logger: logging.Discard(),
		tasks:  []model.Task{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tasks returns the current collection in server order. The slice is never
// modified after it is published, so callers may keep it as a snapshot but
// must not write to it.
func (c *Controller) Tasks() []model.Task { return c.tasks }

func (c *Controller) Len() int { return len(c.tasks) }

func (c *Controller) Find(id model.ID) (model.Task, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return c.tasks[i], true
}

// Loading reports whether a load is in flight or the first load has not
// been requested yet.
func (c *Controller) Loading() bool { return c.loading > 0 || !c.loaded }

func (c *Controller) Submitting() bool { return c.submitting > 0 }

func (c *Controller) InFlight() int { return c.inFlight }

// Err is the user-facing message of the last failed load or create.
func (c *Controller) Err() string { return c.errText }

func (c *Controller) ClearErr() { c.errText = "" }

// Close detaches the Controller from its view. Responses that arrive later
// are dropped.
func (c *Controller) Close() { c.closed = true }

func (c *Controller) Load() tea.Cmd {
	if c.closed {
		return nil
	}
	c.loading++
	c.inFlight++
	owner, remote := c.id, c.remote
	return func() tea.Msg {
		list, err := remote.ListTasks(context.Background())
		return LoadedMsg{owner: owner, Tasks: list, Err: err}
	}
}

// Create validates the title and dispatches a create request. On failure
// the caller keeps its draft; on success CreatedMsg tells it to clear.
func (c *Controller) Create(title, description string) (tea.Cmd, error) {
	if c.closed {
		return nil, ErrClosed
	}
	in := model.NewTask{Title: strings.TrimSpace(title), Description: strings.TrimSpace(description)}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c.submitting++
	c.inFlight++
	c.errText = ""
	owner, remote := c.id, c.remote
	return func() tea.Msg {
		task, err := remote.CreateTask(context.Background(), in)
		if err == nil && task.ID == "" {
			err = fmt.Errorf("%w: created task has no id", model.ErrInvalidID)
		}
		return CreatedMsg{owner: owner, Task: task, Err: err}
	}, nil
}

// Update sends patch for a task present in the local collection.
func (c *Controller) Update(id model.ID, patch model.Patch) (tea.Cmd, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if _, ok := c.Find(id); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	c.inFlight++
	owner, remote := c.id, c.remote
	return func() tea.Msg {
		task, err := remote.UpdateTask(context.Background(), id, patch)
		if err == nil && task.ID != id {
			err = fmt.Errorf("%w: sent %s, got %s", ErrIDMismatch, id, task.ID)
		}
		return UpdatedMsg{owner: owner, ID: id, Patch: patch, Task: task, Err: err}
	}, nil
}

func (c *Controller) ToggleComplete(id model.ID) (tea.Cmd, error) {
	task, ok := c.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	return c.Update(id, model.Patch{Completed: model.BoolPtr(!task.Completed)})
}

// Delete asks confirm before dispatching. A declined confirmation returns a
// nil command and no error.
func (c *Controller) Delete(id model.ID, confirm ConfirmFunc) (tea.Cmd, error) {
	if c.closed {
		return nil, ErrClosed
	}
	task, ok := c.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	if confirm == nil || !confirm(task) {
		c.logger.Debug("delete declined", "id", id)
		return nil, nil
	}
	c.inFlight++
	owner, remote := c.id, c.remote
	return func() tea.Msg {
		err := remote.DeleteTask(context.Background(), id)
		return DeletedMsg{owner: owner, ID: id, Err: err}
	}, nil
}

// Apply folds a result message produced by one of this Controller's
// commands into the collection. It reports false for messages it does not
// own.
func (c *Controller) Apply(msg tea.Msg) bool {
	switch typed := msg.(type) {
	case LoadedMsg:
		if typed.owner != c.id {
			return false
		}
		c.settle()
		c.loading = max(c.loading-1, 0)
		c.loaded = true
		if c.closed {
			return true
		}
		c.applyLoaded(typed)
	case CreatedMsg:
		if typed.owner != c.id {
			return false
		}
		c.settle()
		c.submitting = max(c.submitting-1, 0)
		if c.closed {
			return true
		}
		c.applyCreated(typed)
	case UpdatedMsg:
		if typed.owner != c.id {
			return false
		}
		c.settle()
		if c.closed {
			return true
		}
		c.applyUpdated(typed)
	case DeletedMsg:
		if typed.owner != c.id {
			return false
		}
		c.settle()
		if c.closed {
			return true
		}
		c.applyDeleted(typed)
	default:
		return false
	}
	return true
}

func (c *Controller) settle() {
	if c.inFlight > 0 {
		c.inFlight--
	}
}

func (c *Controller) applyLoaded(msg LoadedMsg) {
	if msg.Err != nil {
		c.errText = LoadFailedText
		c.logger.Error("load tasks failed", "err", msg.Err)
		return
	}
	next := make([]model.Task, 0, len(msg.Tasks))
	next = append(next, msg.Tasks...)
	c.tasks = next
	c.errText = ""
	c.logger.Debug("tasks loaded", "count", len(next))
}

func (c *Controller) applyCreated(msg CreatedMsg) {
	if msg.Err != nil {
		c.errText = CreateFailedText
		c.logger.Error("create task failed", "err", msg.Err)
		return
	}
	if i := c.indexOf(msg.Task.ID); i >= 0 {
		// A reload that raced the create already brought the task in.
		next := slices.Clone(c.tasks)
		next[i] = msg.Task
		c.tasks = next
		return
	}
	next := make([]model.Task, 0, len(c.tasks)+1)
	next = append(next, c.tasks...)
	c.tasks = append(next, msg.Task)
	c.logger.Info("task created", "id", msg.Task.ID)
}

func (c *Controller) applyUpdated(msg UpdatedMsg) {
	if msg.Err != nil {
		c.logger.Error("update task failed", "id", msg.ID, "patch", msg.Patch.String(), "err", msg.Err)
		return
	}
	if msg.Task.ID != msg.ID {
		c.logger.Error("dropping update with mismatched id", "sent", msg.ID, "got", msg.Task.ID)
		return
	}
	i := c.indexOf(msg.ID)
	if i < 0 {
		c.logger.Warn("dropping update for task no longer listed", "id", msg.ID)
		return
	}
	next := slices.Clone(c.tasks)
	next[i] = msg.Task
	c.tasks = next
}

func (c *Controller) applyDeleted(msg DeletedMsg) {
	if msg.Err != nil {
		c.logger.Error("delete task failed", "id", msg.ID, "err", msg.Err)
		return
	}
	c.tasks = slices.DeleteFunc(slices.Clone(c.tasks), func(t model.Task) bool {
		return t.ID == msg.ID
	})
	c.logger.Info("task deleted", "id", msg.ID)
}

func (c *Controller) indexOf(id model.ID) int {
	return slices.IndexFunc(c.tasks, func(t model.Task) bool { return t.ID == id })
}

// Settle runs cmd to completion on the calling goroutine and applies its
// result. It is meant for headless callers; UI code lets Bubble Tea run the
// command instead.
func Settle(c *Controller, cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	c.Apply(msg)
	return msg
}
