package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeEdit   Type = "edit"
	TypeDone   Type = "done"
	TypeDelete Type = "delete"
	TypeReload Type = "reload"
	TypeLogout Type = "logout"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs splits "title | description" on the first pipe.
type AddArgs struct {
	Title       string
	Description string
}

// TargetArgs addresses a task by its 1-based position in the list.
type TargetArgs struct {
	Position int
}

type EditArgs struct {
	Position int
	Title    string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Edit   *EditArgs
	Target *TargetArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	rest := strings.TrimSpace(raw[len(parts[0]):])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, rest)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeDone, TypeDelete:
		return parseTarget(input, Type(head), args)
	case "rm":
		return parseTarget(input, TypeDelete, args)
	case TypeReload, TypeLogout:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw, rest string) (Command, error) {
	title, description, _ := strings.Cut(rest, "|")
	title = strings.TrimSpace(title)
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title, Description: strings.TrimSpace(description)}}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires a task number and a title"}
	}
	pos, err := parsePosition(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &EditArgs{Position: pos, Title: strings.Join(args[1:], " ")}}, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a task number", typ)}
	}
	pos, err := parsePosition(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{Position: pos}}, nil
}

func parsePosition(arg string) (int, error) {
	pos, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || pos < 1 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid task number: %s", arg)}
	}
	return pos, nil
}
