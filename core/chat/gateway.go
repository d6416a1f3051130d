package chat

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/classreport/core"
	"github.com/trezcool/classreport/core/report"
)

// GroupStore resolves parsed groups; *report.Store implements it.
type GroupStore interface {
	All() ([]report.GroupData, error)
	Group(name string) (report.GroupData, error)
}

type ResultKind string

const (
	KindAnswer  ResultKind = "answer"
	KindBlocked ResultKind = "blocked"
)

// Result of one gateway turn. Text holds the answer, or the closing message when blocked.
type Result struct {
	Kind ResultKind
	Text string
}

type GatewayConfig struct {
	SystemInstruction string
	Handover          string
	RecapTurns        int
	Limits            report.ContextLimits
	RevealTool        core.RevealToolConfig
}

// Gateway grounds questions in the group data and interprets the model's replies.
type Gateway struct {
	groups GroupStore
	model  Model
	conf   GatewayConfig
	tools  []Tool
}

func NewGateway(groups GroupStore, model Model, conf GatewayConfig) *Gateway {
	return &Gateway{
		groups: groups,
		model:  model,
		conf:   conf,
		tools:  declaredTools(conf.RevealTool),
	}
}

// Tools returns the tool declarations sent to the model.
func (gw *Gateway) Tools() []Tool {
	return gw.tools
}

// Context builds the knowledge document of groupID.
func (gw *Gateway) Context(groupID string) (string, error) {
	gd, err := gw.groups.Group(groupID)
	if err != nil {
		return "", err
	}
	all, err := gw.groups.All()
	if err != nil {
		return "", err
	}
	return report.BuildContext(gd, all, gw.conf.Limits), nil
}

// Answer asks the model about groupID. priorTurns are replayed as history.
func (gw *Gateway) Answer(ctx context.Context, question, groupID string, priorTurns []Turn) (Result, error) {
	knowledge, err := gw.Context(groupID)
	if err != nil {
		return Result{}, errors.Wrap(err, "building context")
	}

	var recap []Turn
	if gw.conf.RecapTurns > 0 {
		recap = lastTurns(priorTurns, gw.conf.RecapTurns)
	}
	req := ModelRequest{
		SystemInstruction: gw.conf.SystemInstruction,
		History:           priorTurns,
		Prompt:            ComposePrompt(recap, knowledge, gw.conf.Handover, question),
		Tools:             gw.tools,
	}

	out, err := gw.model.Generate(ctx, req)
	if err != nil {
		return Result{}, &UpstreamError{Err: err}
	}
	return gw.interpret(out)
}

func (gw *Gateway) interpret(out Output) (Result, error) {
	switch o := out.(type) {
	case PlainText:
		return Result{Kind: KindAnswer, Text: o.Text}, nil
	case ToolCall:
		switch {
		case o.Name == EndConversationTool:
			msg := strings.TrimSpace(o.StringArg(FinalMessageArg))
			if msg == "" {
				msg = FallbackEndMessage
			}
			return Result{Kind: KindBlocked, Text: msg}, nil
		case gw.conf.RevealTool.Name != "" && o.Name == gw.conf.RevealTool.Name:
			return Result{Kind: KindAnswer, Text: gw.conf.RevealTool.Sentinel}, nil
		default:
			return Result{}, &ProtocolDriftError{Tool: o.Name, Output: o}
		}
	default:
		return Result{}, &ProtocolDriftError{Output: out}
	}
}
