package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/sandeepkv93/taskmaster/internal/config"
	"github.com/sandeepkv93/taskmaster/internal/devserver"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/storage"
	"github.com/sandeepkv93/taskmaster/internal/tasks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"API_URL", "REQUEST_TIMEOUT", "LOG_FILE", "LOG_LEVEL", "LOG_FORMAT", "CONFIG"} {
		t.Setenv("TASKMASTER_"+name, "")
	}
}

func startServer(t *testing.T) string {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	seq := 0
	srv := devserver.New(repo, devserver.WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("t%d", seq)
	}))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func run(t *testing.T, baseURL, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(WithIO(strings.NewReader(stdin), &out, &errOut))
	root.SetArgs(append([]string{
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"--api-url", baseURL,
		"--log-level", "error",
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, baseURL string, args ...string) string {
	t.Helper()
	out, err := run(t, baseURL, "", args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func listJSON(t *testing.T, baseURL string) []model.Task {
	t.Helper()
	var list []model.Task
	if err := json.Unmarshal([]byte(mustRun(t, baseURL, "list", "-o", "json")), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return list
}

func TestAddAndListFormats(t *testing.T) {
	clearEnv(t)
	url := startServer(t)

	if out := mustRun(t, url, "list"); !strings.Contains(out, "No tasks yet") {
		t.Fatalf("expected empty text, got %q", out)
	}
	if out := mustRun(t, url, "add", "Buy", "milk", "-d", "two litres"); !strings.Contains(out, "added t1: Buy milk") {
		t.Fatalf("unexpected add output %q", out)
	}
	mustRun(t, url, "add", "Call plumber")

	list := listJSON(t, url)
	if len(list) != 2 || list[0].Title != "Buy milk" || list[1].Title != "Call plumber" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[0].Description != "two litres" {
		t.Fatalf("expected description, got %q", list[0].Description)
	}

	out := mustRun(t, url, "list", "-o", "yaml")
	if !strings.Contains(out, "title: Buy milk") || !strings.Contains(out, "id: t2") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
	out = mustRun(t, url, "list")
	if !strings.Contains(out, "Call plumber") || !strings.Contains(out, "Pending") {
		t.Fatalf("unexpected table:\n%s", out)
	}

	if _, err := run(t, url, "", "list", "-o", "xml"); err == nil {
		t.Fatal("expected error for unknown output format")
	}
}

func TestAddRejectsBlankTitle(t *testing.T) {
	clearEnv(t)
	url := startServer(t)
	_, err := run(t, url, "", "add", "   ")
	if !errors.Is(err, model.ErrEmptyTitle) {
		t.Fatalf("expected empty title error, got %v", err)
	}
	if len(listJSON(t, url)) != 0 {
		t.Fatal("expected nothing created")
	}
}

func TestDoneAndEditByPositionAndID(t *testing.T) {
	clearEnv(t)
	url := startServer(t)
	mustRun(t, url, "add", "Write report")
	mustRun(t, url, "add", "Call plumber")

	if out := mustRun(t, url, "done", "#2"); !strings.Contains(out, "Completed t2") {
		t.Fatalf("unexpected done output %q", out)
	}
	if out := mustRun(t, url, "done", "t2", "--undo"); !strings.Contains(out, "Pending t2") {
		t.Fatalf("unexpected undo output %q", out)
	}
	mustRun(t, url, "edit", "1", "--title", "Write final report")

	list := listJSON(t, url)
	if list[0].Title != "Write final report" || list[1].Completed {
		t.Fatalf("unexpected list: %+v", list)
	}

	if _, err := run(t, url, "", "edit", "1"); !errors.Is(err, model.ErrEmptyPatch) {
		t.Fatalf("expected empty patch error, got %v", err)
	}
	if _, err := run(t, url, "", "edit", "1", "--title", " "); !errors.Is(err, model.ErrEmptyTitle) {
		t.Fatalf("expected empty title error, got %v", err)
	}
	if _, err := run(t, url, "", "done", "9"); !errors.Is(err, errNoSuchTask) {
		t.Fatalf("expected no such task, got %v", err)
	}
}

func TestRemoveAsksForConfirmation(t *testing.T) {
	clearEnv(t)
	url := startServer(t)
	mustRun(t, url, "add", "Write report")
	mustRun(t, url, "add", "Call plumber")

	out, err := run(t, url, "n\n", "rm", "1")
	if err != nil {
		t.Fatalf("rm declined: %v", err)
	}
	if !strings.Contains(out, "Are you sure you want to delete this task? [y/N]") || !strings.Contains(out, "kept") {
		t.Fatalf("unexpected prompt output %q", out)
	}
	if len(listJSON(t, url)) != 2 {
		t.Fatal("declined delete must keep the task")
	}

	if _, err := run(t, url, "", "rm", "1"); err != nil {
		t.Fatalf("rm without answer: %v", err)
	}
	if len(listJSON(t, url)) != 2 {
		t.Fatal("empty answer must keep the task")
	}

	if out, err := run(t, url, "yes\n", "rm", "t1"); err != nil || !strings.Contains(out, "deleted t1") {
		t.Fatalf("rm confirmed: %q %v", out, err)
	}
	mustRun(t, url, "rm", "--yes", "1")
	if len(listJSON(t, url)) != 0 {
		t.Fatal("expected both tasks deleted")
	}
}

type failingRemote struct{}

func (failingRemote) ListTasks(context.Context) ([]model.Task, error) {
	return nil, errors.New("connection refused")
}

func (failingRemote) CreateTask(context.Context, model.NewTask) (model.Task, error) {
	return model.Task{}, errors.New("unreachable")
}

func (failingRemote) UpdateTask(context.Context, model.ID, model.Patch) (model.Task, error) {
	return model.Task{}, errors.New("unreachable")
}

func (failingRemote) DeleteTask(context.Context, model.ID) error {
	return errors.New("unreachable")
}

func TestConfigPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "taskmaster.toml")
	content := "api_url = \"http://file.example:1\"\nrequest_timeout = \"3s\"\nlog_level = \"error\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TASKMASTER_API_URL", "http://env.example:2")

	var seen config.RuntimeConfig
	factory := func(cfg config.RuntimeConfig, _ *log.Logger) (tasks.Remote, error) {
		seen = cfg
		return failingRemote{}, nil
	}
	exec := func(args ...string) error {
		var out bytes.Buffer
		root := NewRootCommand(WithIO(strings.NewReader(""), &out, &out), WithRemoteFactory(factory))
		root.SetArgs(append([]string{"--config", path}, args...))
		return root.Execute()
	}

	err := exec("list")
	if err == nil || !strings.Contains(err.Error(), tasks.LoadFailedText) {
		t.Fatalf("expected load failure, got %v", err)
	}
	if seen.APIURL != "http://env.example:2" {
		t.Fatalf("expected env to beat file, got %q", seen.APIURL)
	}
	if seen.RequestTimeout.Seconds() != 3 {
		t.Fatalf("expected timeout from file, got %v", seen.RequestTimeout)
	}

	_ = exec("list", "--api-url", "http://flag.example:3", "--timeout", "1s")
	if seen.APIURL != "http://flag.example:3" || seen.RequestTimeout.Seconds() != 1 {
		t.Fatalf("expected flags to win, got %+v", seen)
	}

	if err := exec("list", "--api-url", "ftp://nope"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}
