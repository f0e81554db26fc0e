package views

import (
	"strings"
	"testing"
)

func TestRenderTaskListStates(t *testing.T) {
	if got := RenderTaskList(TaskListData{Loading: true}); got != LoadingText {
		t.Fatalf("expected loading text, got %q", got)
	}
	if got := RenderTaskList(TaskListData{}); !strings.Contains(got, EmptyText) {
		t.Fatalf("expected empty text, got %q", got)
	}

	got := RenderTaskList(TaskListData{Items: []TaskItemData{
		{Position: 1, Title: "Write report", Description: "first line\nsecond line", Selected: true},
		{Position: 2, Title: "Call plumber", Completed: true},
	}})
	for _, want := range []string{"> 1. [ ]", "Write report", "first line", "2. [x]", "Call plumber", PendingBadge, CompletedBadge} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "second line") {
		t.Fatalf("expected only the first description line in the list")
	}
}

func TestRenderTaskItemEditing(t *testing.T) {
	got := RenderTaskList(TaskListData{Items: []TaskItemData{{
		Position:          1,
		Title:             "Write report",
		Editing:           true,
		TitleEditor:       "> draft",
		DescriptionEditor: "line one\nline two",
		Hint:              "title is required",
	}}})
	for _, want := range []string{"> draft", "     line two", "[enter] save", "title is required"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}
}

func TestRenderTaskFormSubmitting(t *testing.T) {
	got := RenderTaskForm(FormPanelData{Active: true, Submitting: true, ErrorText: "Failed to add task."})
	if !strings.Contains(got, AddingLabel) || !strings.Contains(got, "Failed to add task.") {
		t.Fatalf("unexpected form:\n%s", got)
	}
}

func TestRenderDetailPanel(t *testing.T) {
	if got := RenderDetailPanel(DetailPanelData{}); !strings.Contains(got, "(no selection)") {
		t.Fatalf("unexpected empty detail %q", got)
	}
	got := RenderDetailPanel(DetailPanelData{Title: "Write report", ID: "7", Completed: true})
	if !strings.Contains(got, "status: Completed") || !strings.Contains(got, "id: 7") {
		t.Fatalf("unexpected detail:\n%s", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	if RenderMarkdown("  ", 40) != "" {
		t.Fatal("expected empty output for blank markdown")
	}
	if got := RenderMarkdown("# Plan\n\n- buy milk", 40); !strings.Contains(got, "milk") {
		t.Fatalf("expected rendered list item, got %q", got)
	}
}

func TestPaneWidth(t *testing.T) {
	if PaneWidth(0) != defaultPaneWidth {
		t.Fatalf("expected default width")
	}
	if PaneWidth(10) != 20 {
		t.Fatalf("expected minimum width")
	}
	if PaneWidth(100) != 46 {
		t.Fatalf("expected half width minus chrome, got %d", PaneWidth(100))
	}
}
