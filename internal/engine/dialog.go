package engine

import (
	"github.com/google/uuid"

	"github.com/warekit/shuttle/pkg/api"
)

// presentDialog renders the dialog's screen format into a payload, records
// the pause marker on the session, and signals "awaiting input" with a Pass
// result so the interpreter stops advancing.
func (x *Executor) presentDialog(
	action *api.DialogAction, sess *Session, atStep int,
) *Result {
	// Selecting a format by the device's screen group is an extension
	// point; the first detail is used for now.
	if len(action.Details) == 0 {
		return Fail("no screen format defined for dialog")
	}
	detail := action.Details[0]

	format := x.engine.Cache().ScreenFormat(detail.ScreenFormatID)
	if format == nil {
		return Fail("screen format %s not found", detail.ScreenFormatID)
	}

	screen := buildScreen(format, sess)
	sess.Pause(action.ID, atStep, screen)

	return Pass("dialog displayed, awaiting input")
}

// submitInput writes the raw input value into the screen format's first
// input field and clears the pause marker. Type coercion, if any, happens
// the next time the value is consumed.
func (x *Executor) submitInput(
	action *api.DialogAction, sess *Session, input string,
) *Result {
	if len(action.Details) == 0 {
		return Fail("no screen format detail")
	}
	detail := action.Details[0]

	format := x.engine.Cache().ScreenFormat(detail.ScreenFormatID)
	if format == nil {
		return Fail("screen format %s not found", detail.ScreenFormatID)
	}

	for _, d := range format.Details {
		if d.Usage != api.UsageInput {
			continue
		}
		if d.DataID != uuid.Nil {
			sess.SetField(d.DataID, input)
		}
		break
	}

	sess.Resume()
	return Pass("input processed")
}
