package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyTitle = errors.New("model: task title is required")
	ErrEmptyPatch = errors.New("model: patch has no fields")
	ErrInvalidID  = errors.New("model: invalid task id")
)

// ID is the server-assigned task identifier. Servers in the wild hand out
// both numeric and string ids, so decoding accepts either and keeps the
// textual form.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: %s", ErrInvalidID, data)
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	*id = ID(n.String())
	return nil
}

type Task struct {
	ID          ID     `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Completed   bool   `json:"completed" yaml:"completed"`
}

func (t *Task) UnmarshalJSON(data []byte) error {
	type wire struct {
		ID          *ID     `json:"id"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Completed   bool    `json:"completed"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == nil {
		return fmt.Errorf("%w: missing id", ErrInvalidID)
	}
	out := Task{ID: *w.ID, Title: w.Title, Completed: w.Completed}
	if w.Description != nil {
		out.Description = *w.Description
	}
	*t = out
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(string(t.ID)) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Apply returns a copy of t with the patch fields set. It is only used by
// fixtures that play the server role; the client never merges locally.
func (t Task) Apply(p Patch) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (n NewTask) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Patch carries the subset of task fields an update changes. Nil fields are
// left out of the request body.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

func (p Patch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

func (p Patch) String() string {
	fields := make([]string, 0, 3)
	if p.Title != nil {
		fields = append(fields, fmt.Sprintf("title=%q", *p.Title))
	}
	if p.Description != nil {
		fields = append(fields, fmt.Sprintf("description=%q", *p.Description))
	}
	if p.Completed != nil {
		fields = append(fields, fmt.Sprintf("completed=%t", *p.Completed))
	}
	return "{" + strings.Join(fields, " ") + "}"
}

func StringPtr(s string) *string { return &s }

func BoolPtr(b bool) *bool { return &b }
