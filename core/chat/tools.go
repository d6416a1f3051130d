package chat

import "github.com/trezcool/classreport/core"

type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
)

type (
	Parameter struct {
		Name        string
		Type        ParamType
		Description string
		Required    bool
	}

	// Tool is a function signature the model may call instead of answering with text.
	Tool struct {
		Name        string
		Description string
		Parameters  []Parameter
	}
)

const (
	EndConversationTool = "endConversation"
	FinalMessageArg     = "finalMessage"

	// FallbackEndMessage is shown when the model ends a conversation without a closing message.
	FallbackEndMessage = "This conversation has been ended due to off-topic questions."
)

func endConversationTool() Tool {
	return Tool{
		Name: EndConversationTool,
		Description: "Ends the conversation when the user keeps asking questions unrelated to the class groups " +
			"after having been warned. The user is blocked from chatting for a while.",
		Parameters: []Parameter{
			{
				Name:        FinalMessageArg,
				Type:        TypeString,
				Description: "A short and polite closing message explaining why the conversation ends.",
				Required:    true,
			},
		},
	}
}

// declaredTools returns the tools sent with every model request.
func declaredTools(reveal core.RevealToolConfig) []Tool {
	tools := []Tool{endConversationTool()}
	if reveal.Name != "" {
		tools = append(tools, Tool{Name: reveal.Name, Description: reveal.Description})
	}
	return tools
}
