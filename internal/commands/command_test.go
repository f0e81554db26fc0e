package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent tomorrow", TypeAdd},
		{"edit 2 pay rent today", TypeEdit},
		{"done 1", TypeDone},
		{"delete #3", TypeDelete},
		{"rm 3", TypeDelete},
		{"/reload", TypeReload},
		{"LOGOUT", TypeLogout},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddSplitsDescription(t *testing.T) {
	cmd, err := Parse("add  Buy milk | 2L, semi skimmed ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Title != "Buy milk" || cmd.Add.Description != "2L, semi skimmed" {
		t.Fatalf("unexpected add args: %+v", cmd.Add)
	}
}

func TestParseRejectsBadArguments(t *testing.T) {
	for _, in := range []string{"add", "add | only description", "done", "done zero", "done 0", "delete 1 2", "reload now", "edit 1"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(" / ")
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/done 4")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Done: func(a TargetArgs) (Result, error) {
			called = true
			if a.Position != 4 {
				t.Fatalf("unexpected position: %d", a.Position)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("reload")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
