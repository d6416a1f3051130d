package chat

import "context"

type (
	// Output is what the model produced for one prompt: PlainText or ToolCall.
	Output interface {
		isOutput()
	}

	PlainText struct {
		Text string
	}

	// ToolCall is a structured invocation of one of the declared tools.
	ToolCall struct {
		Name string
		Args map[string]interface{}
	}

	ModelRequest struct {
		SystemInstruction string
		History           []Turn
		Prompt            string
		Tools             []Tool
	}

	// Model is the external language model service.
	Model interface {
		Generate(ctx context.Context, req ModelRequest) (Output, error)
	}
)

func (PlainText) isOutput() {}
func (ToolCall) isOutput()  {}

// StringArg returns the string argument named name, or "" if it is missing or not a string.
func (tc ToolCall) StringArg(name string) string {
	if s, ok := tc.Args[name].(string); ok {
		return s
	}
	return ""
}
