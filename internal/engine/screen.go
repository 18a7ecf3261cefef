package engine

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/warekit/shuttle/pkg/api"
)

// buildScreen renders a screen format plus current session field values
// into the structured payload terminals consume. Elements route by data
// usage and row position: row 1 is the heading, rows 2-5 the content block
// (row 2 the paragraph, 3-5 appended lines), row 8 the options bar, rows
// 6-7 the prompt label, and any input-usage element the prompt input. The
// row convention is a protocol contract with the terminal clients and must
// not change.
func buildScreen(format *api.ScreenFormat, sess *Session) *api.Screen {
	details := make([]*api.ScreenFormatDetail, len(format.Details))
	copy(details, format.Details)
	sort.Slice(details, func(i, j int) bool {
		return details[i].Sequence < details[j].Sequence
	})

	screen := &api.Screen{}
	for _, detail := range details {
		value := elementValue(detail, sess)

		switch detail.Usage {
		case api.UsageInput:
			addPromptInput(detail, value, screen)
		case api.UsageLabel:
			addPromptLabel(detail, value, screen)
		default:
			addDisplay(detail, value, screen)
		}
	}
	return screen
}

// elementValue resolves an element's display text: literal text for
// literals, the current field value for field references, empty for input
// placeholders
func elementValue(detail *api.ScreenFormatDetail, sess *Session) string {
	switch detail.Kind {
	case api.KindLiteral:
		if detail.Format == "DEFAULT" {
			return ""
		}
		return detail.Format
	case api.KindField:
		return stringify(sess.Field(detail.DataID))
	default:
		return ""
	}
}

func addPromptInput(
	detail *api.ScreenFormatDetail, value string, screen *api.Screen,
) {
	if screen.Prompt == nil {
		screen.Prompt = &api.ScreenPrompt{}
	}
	screen.Prompt.DefaultValue = value
	screen.Prompt.DisplayValue = value
	screen.Prompt.Masked = &api.ScreenMask{
		On:   maskedFlag(detail.Echo),
		Char: "*",
	}
	if detail.DataID != uuid.Nil {
		id := detail.DataID
		screen.Prompt.InputFieldID = &id
	}
}

func addPromptLabel(
	detail *api.ScreenFormatDetail, value string, screen *api.Screen,
) {
	if detail.Row != 6 && detail.Row != 7 {
		return
	}
	if screen.Prompt == nil {
		screen.Prompt = &api.ScreenPrompt{}
	}
	screen.Prompt.Label = value
}

func addDisplay(
	detail *api.ScreenFormatDetail, value string, screen *api.Screen,
) {
	switch {
	case detail.Row == 1:
		screen.Heading = value

	case detail.Row >= 2 && detail.Row <= 5:
		if screen.Content == nil {
			screen.Content = &api.ScreenContent{}
		}
		if detail.Row == 2 {
			screen.Content.Paragraph = value
		} else {
			screen.Content.Lines = append(screen.Content.Lines, value)
		}

	case detail.Row == 8:
		parseOptions(value, screen)
	}
}

// parseOptions splits an options row of the form "F1:Help F2:Menu" into the
// option list
func parseOptions(value string, screen *api.Screen) {
	if value == "" {
		return
	}
	screen.Options = []*api.ScreenOption{}

	for _, part := range strings.Fields(value) {
		kv := strings.Split(part, ":")
		if len(kv) != 2 {
			continue
		}
		screen.Options = append(screen.Options, &api.ScreenOption{
			Value: strings.TrimSpace(kv[0]),
			Text:  strings.TrimSpace(kv[1]),
		})
	}
}

func maskedFlag(echo int) string {
	if echo == 1 {
		return "TRUE"
	}
	return "FALSE"
}
