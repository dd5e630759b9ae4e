package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/helpcar/quotechat/internal/testutils"
	mcpadapter "github.com/helpcar/quotechat/pkg/adapters/mcp"
	"github.com/helpcar/quotechat/pkg/adapters/memory"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/ports"
	"github.com/helpcar/quotechat/pkg/session"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, sessionOpts []session.Option, opts ...mcpadapter.Option) *client.Client {
	t.Helper()
	bundle, err := locale.NewBundle()
	require.NoError(t, err)
	mgr := session.NewManager(memory.NewStore(),
		func(lang string) ports.Translator { return bundle.Translator(lang) },
		session.WithSessionOptions(sessionOpts...),
		session.WithIDGenerator(func() string { return "s-1" }),
	)
	t.Cleanup(mgr.Shutdown)

	srv := mcpadapter.NewServer(mgr, bundle, opts...)
	c, err := client.NewInProcessClient(srv.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	init := mcp.InitializeRequest{}
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "1.0.0"}
	_, err = c.Initialize(ctx, init)
	require.NoError(t, err)
	return c
}

func call(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	return res
}

func view(t *testing.T, res *mcp.CallToolResult) mcpadapter.ViewResponse {
	t.Helper()
	require.False(t, res.IsError, "tool error: %v", res.Content)
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out mcpadapter.ViewResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func errorText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestTools_ListsSessionTools(t *testing.T) {
	c := newClient(t, nil)
	tools, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"start_session", "answer", "report_location", "get_view", "compose_message", "close_session",
	}, names)
}

func TestTools_CompleteLeadWithManualClock(t *testing.T) {
	clock := testutils.NewFakeClock()
	pacing := session.DefaultPacing()
	c := newClient(t, []session.Option{session.WithClock(clock)}, mcpadapter.WithSettleTimeout(0))

	started := view(t, call(t, c, "start_session", map[string]any{"language": "en"}))
	assert.Equal(t, "s-1", started.View.SessionID)
	assert.Equal(t, "en", started.View.Language)
	assert.True(t, started.View.Pending)
	clock.Advance(pacing.Initial)

	busy := call(t, c, "answer", map[string]any{"session_id": "s-1", "value": "battery"})
	require.False(t, busy.IsError)
	again := call(t, c, "answer", map[string]any{"session_id": "s-1", "value": "sedan"})
	assert.Contains(t, errorText(t, again), "busy")
	clock.Advance(pacing.Answer)

	for _, v := range []string{"sedan", "manual", "no"} {
		call(t, c, "answer", map[string]any{"session_id": "s-1", "value": v})
		clock.Advance(pacing.Answer)
	}

	located := view(t, call(t, c, "report_location", map[string]any{"session_id": "s-1", "lat": 50.85, "lng": 4.35}))
	assert.Equal(t, domain.StepFinal, located.View.Step)
	clock.Advance(pacing.Answer)
	clock.Advance(pacing.Summary)

	final := view(t, call(t, c, "get_view", map[string]any{"session_id": "s-1"}))
	assert.Equal(t, domain.StepSummaryReveal, final.View.Step)
	assert.Contains(t, final.Message, "Problem: Dead battery")
	assert.Contains(t, final.Link, "https://wa.me/32479890089?text=")

	composed := call(t, c, "compose_message", map[string]any{"session_id": "s-1"})
	require.False(t, composed.IsError)
	data, err := json.Marshal(composed.StructuredContent)
	require.NoError(t, err)
	var msg mcpadapter.MessageResponse
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, final.Message, msg.Message)
}

func TestTools_LocationFailureFallsBack(t *testing.T) {
	clock := testutils.NewFakeClock()
	pacing := session.DefaultPacing()
	c := newClient(t, []session.Option{session.WithClock(clock)}, mcpadapter.WithSettleTimeout(0))

	call(t, c, "start_session", map[string]any{"language": "en"})
	clock.Advance(pacing.Initial)
	for _, v := range []string{"battery", "sedan", "manual", "no"} {
		call(t, c, "answer", map[string]any{"session_id": "s-1", "value": v})
		clock.Advance(pacing.Answer)
	}

	res := view(t, call(t, c, "report_location", map[string]any{"session_id": "s-1", "error": "permission_denied"}))
	assert.Equal(t, domain.StepLocation, res.View.Step)
	require.NotNil(t, res.View.Affordance)
	assert.Equal(t, domain.AffordanceAddressEntry, res.View.Affordance.Kind)
}

func TestTools_WaitsForPacing(t *testing.T) {
	fast := session.Pacing{Initial: 5 * time.Millisecond, Answer: 5 * time.Millisecond, Summary: 5 * time.Millisecond}
	c := newClient(t, []session.Option{session.WithPacing(fast)}, mcpadapter.WithSettleTimeout(2*time.Second))

	started := view(t, call(t, c, "start_session", nil))
	assert.False(t, started.View.Pending)
	assert.Equal(t, "fr", started.View.Language)

	answered := view(t, call(t, c, "answer", map[string]any{"session_id": "s-1", "value": "wreck"}))
	assert.False(t, answered.View.Pending)
	assert.Equal(t, domain.StepWreckBrand, answered.View.Step)
}

func TestTools_Errors(t *testing.T) {
	c := newClient(t, nil, mcpadapter.WithSettleTimeout(0))

	assert.Contains(t, errorText(t, call(t, c, "get_view", map[string]any{"session_id": "missing"})), "session not found")
	assert.Contains(t, errorText(t, call(t, c, "close_session", map[string]any{"session_id": "missing"})), "session not found")
}

func TestResources_SessionView(t *testing.T) {
	c := newClient(t, nil, mcpadapter.WithSettleTimeout(0))
	call(t, c, "start_session", map[string]any{"language": "nl"})

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "quotechat://sessions/s-1"
	res, err := c.ReadResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	text, ok := mcp.AsTextResourceContents(res.Contents[0])
	require.True(t, ok)
	var v domain.ConversationView
	require.NoError(t, json.Unmarshal([]byte(text.Text), &v))
	assert.Equal(t, "nl", v.Language)
}
