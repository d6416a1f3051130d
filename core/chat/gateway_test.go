package chat_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classreport/core"
	. "github.com/trezcool/classreport/core/chat"
	"github.com/trezcool/classreport/core/report"
	"github.com/trezcool/classreport/tests"
)

// scriptedModel replays outputs in order and records the requests it got.
type scriptedModel struct {
	outputs []Output
	errs    []error
	reqs    []ModelRequest
}

func (m *scriptedModel) Generate(_ context.Context, req ModelRequest) (Output, error) {
	i := len(m.reqs)
	m.reqs = append(m.reqs, req)
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(m.outputs) {
		return m.outputs[i], nil
	}
	return PlainText{Text: "ok"}, nil
}

func answers(outs ...Output) *scriptedModel {
	return &scriptedModel{outputs: outs}
}

var reveal = core.RevealToolConfig{Name: "displayTheBASFImage", Description: "shows the BASF picture", Sentinel: "%%DISPLAY_IMAGE_BASF7%%"}

func newGateway(t *testing.T, model Model, conf GatewayConfig) *Gateway {
	return NewGateway(testutil.NewStore(t), model, conf)
}

func TestGateway_Answer(t *testing.T) {
	tests := []struct {
		name     string
		output   Output
		want     Result
		wantTool string
	}{
		{name: "plain text", output: PlainText{Text: "Jane was late once."}, want: Result{Kind: KindAnswer, Text: "Jane was late once."}},
		{
			name:   "end conversation",
			output: ToolCall{Name: EndConversationTool, Args: map[string]interface{}{FinalMessageArg: " Let's stop here. "}},
			want:   Result{Kind: KindBlocked, Text: "Let's stop here."},
		},
		{
			name:   "end conversation without message",
			output: ToolCall{Name: EndConversationTool},
			want:   Result{Kind: KindBlocked, Text: FallbackEndMessage},
		},
		{
			name:   "end conversation with non string message",
			output: ToolCall{Name: EndConversationTool, Args: map[string]interface{}{FinalMessageArg: 42}},
			want:   Result{Kind: KindBlocked, Text: FallbackEndMessage},
		},
		{name: "reveal tool", output: ToolCall{Name: reveal.Name}, want: Result{Kind: KindAnswer, Text: reveal.Sentinel}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newGateway(t, answers(tt.output), GatewayConfig{RevealTool: reveal})
			got, err := gw.Answer(context.Background(), "was Jane late?", testutil.AcmeGroup, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateway_Answer_request(t *testing.T) {
	model := answers()
	gw := newGateway(t, model, GatewayConfig{
		SystemInstruction: "stay on topic",
		Handover:          "Tom moves to the evening group.",
		RecapTurns:        1,
	})
	prior := []Turn{{Role: RoleUser, Text: "hi"}, {Role: RoleModel, Text: "hello!"}}

	_, err := gw.Answer(context.Background(), "who is in Beta?", testutil.AcmeGroup, prior)
	require.NoError(t, err)
	require.Len(t, model.reqs, 1)

	req := model.reqs[0]
	assert.Equal(t, "stay on topic", req.SystemInstruction)
	assert.Equal(t, prior, req.History)
	assert.Contains(t, req.Prompt, "<conversation_recap>\nAssistant: hello!\n</conversation_recap>")
	assert.Contains(t, req.Prompt, `<full_group_report_data for="Acme Lv3">`)
	assert.Contains(t, req.Prompt, `<student name="Jane" groups="Acme Lv3, Beta Lv2" />`)
	assert.Contains(t, req.Prompt, "<handover_report>\nTom moves to the evening group.\n</handover_report>")
	assert.Contains(t, req.Prompt, `User Question: "who is in Beta?"`)

	// the reveal tool is only declared when configured
	require.Len(t, req.Tools, 1)
	assert.Equal(t, EndConversationTool, req.Tools[0].Name)
	assert.Equal(t, []Parameter{{
		Name: FinalMessageArg, Type: TypeString, Required: true,
		Description: req.Tools[0].Parameters[0].Description,
	}}, req.Tools[0].Parameters)
}

func TestGateway_Answer_errors(t *testing.T) {
	t.Run("unknown group", func(t *testing.T) {
		model := answers()
		gw := newGateway(t, model, GatewayConfig{})
		_, err := gw.Answer(context.Background(), "q", "Nope", nil)
		assert.Equal(t, report.ErrGroupNotFound, errors.Cause(err))
		assert.Empty(t, model.reqs)
	})

	t.Run("unknown tool", func(t *testing.T) {
		gw := newGateway(t, answers(ToolCall{Name: reveal.Name}), GatewayConfig{})
		_, err := gw.Answer(context.Background(), "q", testutil.AcmeGroup, nil)
		drift, ok := errors.Cause(err).(*ProtocolDriftError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, reveal.Name, drift.Tool)
		assert.Contains(t, err.Error(), reveal.Name)
	})

	t.Run("unexpected output", func(t *testing.T) {
		gw := newGateway(t, &scriptedModel{outputs: []Output{nil}}, GatewayConfig{})
		_, err := gw.Answer(context.Background(), "q", testutil.AcmeGroup, nil)
		_, ok := errors.Cause(err).(*ProtocolDriftError)
		assert.True(t, ok, "got %v", err)
	})

	t.Run("upstream", func(t *testing.T) {
		cause := errors.New("connection reset")
		gw := newGateway(t, &scriptedModel{errs: []error{cause}}, GatewayConfig{})
		_, err := gw.Answer(context.Background(), "q", testutil.AcmeGroup, nil)
		upErr, ok := errors.Cause(err).(*UpstreamError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, cause, upErr.Err)
		assert.True(t, errors.Is(err, cause))
		assert.NotContains(t, upErr.UserMessage(), "connection reset")
	})
}

func TestComposePrompt(t *testing.T) {
	got := ComposePrompt(nil, "<ctx/>", "  ", `is "Jane" here?`)
	assert.Equal(t, "<knowledge_base>\n<ctx/>\n</knowledge_base>\n\nUser Question: \"is \\\"Jane\\\" here?\"", got)

	got = ComposePrompt([]Turn{{Role: RoleUser, Text: "hi"}}, "k", "h", "q")
	assert.Equal(t, "<conversation_recap>\nUser: hi\n</conversation_recap>\n\n"+
		"<knowledge_base>\nk\n</knowledge_base>\n\n"+
		"<handover_report>\nh\n</handover_report>\n\n"+
		"User Question: \"q\"", got)
}
