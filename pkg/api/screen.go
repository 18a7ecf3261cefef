package api

import "github.com/google/uuid"

type (
	// Screen is the structured payload a terminal renders. The shape is a
	// fixed wire contract: heading from row 1, content from rows 2-5,
	// options from row 8, prompt from rows 6-7 plus the input element.
	Screen struct {
		Heading string          `json:"heading,omitempty"`
		Content *ScreenContent  `json:"content,omitempty"`
		Options []*ScreenOption `json:"options,omitempty"`
		Prompt  *ScreenPrompt   `json:"prompt,omitempty"`
	}

	// ScreenContent is the body block: row 2 is the paragraph, rows 3-5
	// append lines
	ScreenContent struct {
		Paragraph string   `json:"paragraph,omitempty"`
		Lines     []string `json:"lines,omitempty"`
	}

	// ScreenOption is one soft-key option parsed from a KEY:LABEL token
	ScreenOption struct {
		Value string `json:"value"`
		Text  string `json:"text"`
	}

	// ScreenPrompt describes the input element awaiting the operator.
	// InputFieldID is null when the input element names no target field.
	ScreenPrompt struct {
		Label        string      `json:"label,omitempty"`
		DefaultValue string      `json:"defaultValue"`
		DisplayValue string      `json:"displayValue"`
		Masked       *ScreenMask `json:"masked,omitempty"`
		InputFieldID *uuid.UUID  `json:"inputFieldId"`
	}

	// ScreenMask indicates whether typed input is echoed or masked
	ScreenMask struct {
		On   string `json:"on"`
		Char string `json:"char"`
	}
)
