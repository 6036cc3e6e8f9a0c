package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cv-site/internal/domain"
	"cv-site/internal/model"
)

// ErrNotConfirmed is returned for a delete the user did not confirm.
var ErrNotConfirmed = errors.New("deletion not confirmed")

type Op string

const (
	OpEdit   Op = "edit"
	OpReload Op = "reload"
	OpSave   Op = "save"
	OpCreate Op = "create"
	OpDelete Op = "delete"
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Action is one console command. The textual form is used by the console
// forms and the CLI:
//
//	edit | reload
//	save:personalInfo | save:<kind>:<index>
//	create:<kind> | delete:<kind>:<id>
//	add:<list> | remove:<list>:<index>
type Action struct {
	Op    Op
	Kind  domain.Kind
	List  model.SubList
	Index int
	ID    int64
}

func ParseAction(s string) (Action, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	a := Action{Op: Op(parts[0])}
	bad := func() (Action, error) { return Action{}, fmt.Errorf("invalid action %q", s) }

	var err error
	switch a.Op {
	case OpEdit, OpReload:
		if len(parts) != 1 {
			return bad()
		}
	case OpSave:
		if len(parts) < 2 {
			return bad()
		}
		if a.Kind, err = domain.ParseKind(parts[1]); err != nil {
			return bad()
		}
		if a.Kind == domain.KindPersonalInfo {
			if len(parts) != 2 {
				return bad()
			}
			break
		}
		if len(parts) != 3 {
			return bad()
		}
		if a.Index, err = strconv.Atoi(parts[2]); err != nil {
			return bad()
		}
	case OpCreate:
		if len(parts) != 2 {
			return bad()
		}
		if a.Kind, err = domain.ParseKind(parts[1]); err != nil || !a.Kind.IsCollection() {
			return bad()
		}
	case OpDelete:
		if len(parts) != 3 {
			return bad()
		}
		if a.Kind, err = domain.ParseKind(parts[1]); err != nil || !a.Kind.IsCollection() {
			return bad()
		}
		if a.ID, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
			return bad()
		}
	case OpAdd, OpRemove:
		want := 2
		if a.Op == OpRemove {
			want = 3
		}
		if len(parts) != want {
			return bad()
		}
		if a.List, err = model.ParseSubList(parts[1]); err != nil {
			return bad()
		}
		if a.Op == OpRemove {
			if a.Index, err = strconv.Atoi(parts[2]); err != nil {
				return bad()
			}
		}
	default:
		return bad()
	}
	return a, nil
}

func (a Action) String() string {
	switch a.Op {
	case OpSave:
		if a.Kind == domain.KindPersonalInfo {
			return fmt.Sprintf("save:%s", a.Kind)
		}
		return fmt.Sprintf("save:%s:%d", a.Kind, a.Index)
	case OpCreate:
		return fmt.Sprintf("create:%s", a.Kind)
	case OpDelete:
		return fmt.Sprintf("delete:%s:%d", a.Kind, a.ID)
	case OpAdd:
		return fmt.Sprintf("add:%s", a.List)
	case OpRemove:
		return fmt.Sprintf("remove:%s:%d", a.List, a.Index)
	}
	return string(a.Op)
}

// Apply runs the action against s and returns the message to flash to the
// user. The message is set on failure too.
func (a Action) Apply(ctx context.Context, s *Synchronizer, confirmed bool) (string, error) {
	switch a.Op {
	case OpEdit:
		return "", nil
	case OpReload:
		if err := s.Load(ctx); err != nil {
			return "Failed to load", err
		}
		return "CV reloaded", nil
	case OpSave:
		if a.Kind == domain.KindPersonalInfo {
			if err := s.SaveSection(ctx, a.Kind); err != nil {
				return "Failed to save", err
			}
			return "Personal info saved!", nil
		}
		if err := s.SaveEntity(ctx, a.Kind, a.Index); err != nil {
			return "Failed to update", err
		}
		return a.Kind.Label() + " updated!", nil
	case OpCreate:
		tpl, err := domain.Template(a.Kind)
		if err != nil {
			return "Failed to create", err
		}
		if _, err := s.CreateEntity(ctx, a.Kind, tpl); err != nil {
			return "Failed to create", err
		}
		return a.Kind.Label() + " added!", nil
	case OpDelete:
		if !confirmed {
			return "Deletion not confirmed", ErrNotConfirmed
		}
		if err := s.DeleteEntity(ctx, a.Kind, a.ID); err != nil {
			return "Failed to delete", err
		}
		return a.Kind.Label() + " deleted!", nil
	case OpAdd:
		return "", s.AppendItem(a.List)
	case OpRemove:
		return "", s.RemoveItem(a.List, a.Index)
	}
	return "", fmt.Errorf("unsupported action %q", a.Op)
}

// Assignment is a "path=value" pair given on the command line.
type Assignment struct {
	Path  string
	Value string
}

func ParseAssignment(s string) (Assignment, error) {
	path, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(path) == "" {
		return Assignment{}, fmt.Errorf("invalid assignment %q, want path=value", s)
	}
	path = strings.TrimSpace(path)
	if _, err := ParseFieldPath(path); err != nil {
		return Assignment{}, err
	}
	return Assignment{Path: path, Value: value}, nil
}
