package tasks

import "github.com/sandeepkv93/taskmaster/internal/model"

// Result messages carry the id of the Controller that issued the request so
// a response landing after the view moved on cannot touch a newer
// collection.

type LoadedMsg struct {
	owner uint64
	Tasks []model.Task
	Err   error
}

type CreatedMsg struct {
	owner uint64
	Task  model.Task
	Err   error
}

type UpdatedMsg struct {
	owner uint64
	ID    model.ID
	Patch model.Patch
	Task  model.Task
	Err   error
}

type DeletedMsg struct {
	owner uint64
	ID    model.ID
	Err   error
}
