package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandeepkv93/taskmaster/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "ftp://example.com"}); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
	client, err := NewClient(ClientConfig{BaseURL: "http://localhost:5000/api/tasks/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.BaseURL() != "http://localhost:5000" {
		t.Fatalf("expected tasks path to be stripped, got %q", client.BaseURL())
	}
}

func TestListTasksPreservesServerOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/tasks" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id":3,"title":"c"},{"id":1,"title":"a"},{"id":2,"title":"b","completed":true}]`)
	})

	tasks, err := client.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 3 || tasks[0].ID != "3" || tasks[1].ID != "1" || tasks[2].ID != "2" {
		t.Fatalf("unexpected order: %+v", tasks)
	}
	if !tasks[2].Completed {
		t.Fatalf("expected third task completed: %+v", tasks[2])
	}
}

func TestListTasksNullBodyIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})
	tasks, err := client.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestCreateTaskSendsTitleAndDescription(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/tasks" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["title"] != "Buy milk" || body["description"] != "2L" {
			t.Errorf("unexpected body: %#v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"t-9","title":"Buy milk","description":"2L","completed":false}`)
	})

	task, err := client.CreateTask(context.Background(), model.NewTask{Title: "Buy milk", Description: "2L"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != "t-9" || task.Title != "Buy milk" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestUpdateTaskSendsOnlyChangedFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/tasks/1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if string(raw) != `{"completed":true}` {
			t.Errorf("unexpected patch body: %s", raw)
		}
		_, _ = io.WriteString(w, `{"id":1,"title":"Buy milk","completed":true}`)
	})

	task, err := client.UpdateTask(context.Background(), "1", model.Patch{Completed: model.BoolPtr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !task.Completed || task.Title != "Buy milk" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestDeleteTaskAcceptsEmptyBody(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Method != http.MethodDelete || r.URL.Path != "/api/tasks/abc" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := client.DeleteTask(context.Background(), "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !called {
		t.Fatal("expected server to be called")
	}
}

func TestNonSuccessStatusIsStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	_, err := client.ListTasks(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", statusErr.StatusCode)
	}
}

func TestMalformedBodyIsReported(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":`)
	})
	_, err := client.UpdateTask(context.Background(), "1", model.Patch{Completed: model.BoolPtr(true)})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: url})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.ListTasks(context.Background()); err == nil {
		t.Fatal("expected transport error against closed server")
	}
}
