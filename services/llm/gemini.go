package llmsvc

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/trezcool/classreport/core"
	"github.com/trezcool/classreport/core/chat"
)

var ErrEmptyResponse = errors.New("model returned no content")

// generator is the part of genai.Models used by GeminiModel.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiModel implements chat.Model with the Gemini API.
type GeminiModel struct {
	gen   generator
	model string
}

var _ chat.Model = (*GeminiModel)(nil)

func NewGeminiModel(ctx context.Context, conf *core.Config) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  conf.Chat.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating genai client")
	}
	return &GeminiModel{gen: client.Models, model: conf.Chat.Model}, nil
}

func (m *GeminiModel) Generate(ctx context.Context, req chat.ModelRequest) (chat.Output, error) {
	resp, err := m.gen.GenerateContent(ctx, m.model, contents(req), generateConfig(req))
	if err != nil {
		return nil, errors.Wrap(err, "generating content")
	}
	return output(resp)
}

const (
	roleUser  = "user"
	roleModel = "model"
)

func textContent(text, role string) *genai.Content {
	return &genai.Content{Role: role, Parts: []*genai.Part{{Text: text}}}
}

func contents(req chat.ModelRequest) []*genai.Content {
	cs := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := roleUser
		if turn.Role == chat.RoleModel {
			role = roleModel
		}
		cs = append(cs, textContent(turn.Text, role))
	}
	return append(cs, textContent(req.Prompt, roleUser))
}

var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
}

func generateConfig(req chat.ModelRequest) *genai.GenerateContentConfig {
	conf := &genai.GenerateContentConfig{SafetySettings: safetySettings}
	if req.SystemInstruction != "" {
		conf.SystemInstruction = textContent(req.SystemInstruction, roleUser)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			decls = append(decls, functionDeclaration(tool))
		}
		conf.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return conf
}

var schemaTypes = map[chat.ParamType]genai.Type{
	chat.TypeString:  genai.TypeString,
	chat.TypeNumber:  genai.TypeNumber,
	chat.TypeBoolean: genai.TypeBoolean,
}

func functionDeclaration(tool chat.Tool) *genai.FunctionDeclaration {
	decl := &genai.FunctionDeclaration{Name: tool.Name, Description: tool.Description}
	if len(tool.Parameters) == 0 {
		return decl
	}

	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(tool.Parameters)),
	}
	for _, p := range tool.Parameters {
		schema.Properties[p.Name] = &genai.Schema{Type: schemaTypes[p.Type], Description: p.Description}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	decl.Parameters = schema
	return decl
}

// output takes the first function call of resp, if any, over its text.
func output(resp *genai.GenerateContentResponse) (chat.Output, error) {
	if resp == nil {
		return nil, ErrEmptyResponse
	}
	if calls := resp.FunctionCalls(); len(calls) > 0 {
		return chat.ToolCall{Name: calls[0].Name, Args: calls[0].Args}, nil
	}
	text := resp.Text()
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return chat.PlainText{Text: text}, nil
}
