package storage

import "time"

type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskListFilter struct {
	Completed *bool
	Limit     int
	Offset    int
}
