package commands

import (
	"context"
	"fmt"
)

// Result is the outcome of one command. OK reports whether the command did
// what was asked; Stop relies on it.
type Result struct {
	Message string
	OK      bool
}

type Handlers struct {
	AddAt          func(context.Context, AddArgs) (Result, error)
	AddUnspecified func(context.Context, LabelArgs) (Result, error)
	AddTimeOnly    func(context.Context, TimeArgs) (Result, error)
	DeleteForDay   func(context.Context, DayArgs) (Result, error)
	DeleteByName   func(context.Context, LabelArgs) (Result, error)
	ListForDay     func(context.Context, DayArgs) (Result, error)
	NextUpcoming   func(context.Context) (Result, error)
	ListUntimed    func(context.Context) (Result, error)
	CancelActive   func(context.Context) (Result, error)
	SnoozeActive   func(context.Context, SnoozeArgs) (Result, error)
	ClearAll       func(context.Context) (Result, error)
	Stop           func(context.Context) (Result, error)
}

func Execute(ctx context.Context, cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAddAt:
		if handlers.AddAt == nil {
			return missing(cmd.Type)
		}
		return handlers.AddAt(ctx, *cmd.Add)
	case TypeAddUnspecified:
		if handlers.AddUnspecified == nil {
			return missing(cmd.Type)
		}
		return handlers.AddUnspecified(ctx, *cmd.Label)
	case TypeAddTimeOnly:
		if handlers.AddTimeOnly == nil {
			return missing(cmd.Type)
		}
		return handlers.AddTimeOnly(ctx, *cmd.Time)
	case TypeDeleteForDay:
		if handlers.DeleteForDay == nil {
			return missing(cmd.Type)
		}
		return handlers.DeleteForDay(ctx, *cmd.Day)
	case TypeDeleteByName:
		if handlers.DeleteByName == nil {
			return missing(cmd.Type)
		}
		return handlers.DeleteByName(ctx, *cmd.Label)
	case TypeListForDay:
		if handlers.ListForDay == nil {
			return missing(cmd.Type)
		}
		return handlers.ListForDay(ctx, *cmd.Day)
	case TypeNextUpcoming:
		if handlers.NextUpcoming == nil {
			return missing(cmd.Type)
		}
		return handlers.NextUpcoming(ctx)
	case TypeListUntimed:
		if handlers.ListUntimed == nil {
			return missing(cmd.Type)
		}
		return handlers.ListUntimed(ctx)
	case TypeCancelActive:
		if handlers.CancelActive == nil {
			return missing(cmd.Type)
		}
		return handlers.CancelActive(ctx)
	case TypeSnoozeActive:
		if handlers.SnoozeActive == nil {
			return missing(cmd.Type)
		}
		return handlers.SnoozeActive(ctx, *cmd.Snooze)
	case TypeClearAll:
		if handlers.ClearAll == nil {
			return missing(cmd.Type)
		}
		return handlers.ClearAll(ctx)
	case TypeStop:
		if handlers.Stop == nil {
			return missing(cmd.Type)
		}
		return handlers.Stop(ctx)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) (Result, error) {
	return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
