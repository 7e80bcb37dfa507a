package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/cuotos/slackstorm/dispatcher"
	"github.com/cuotos/slackstorm/notify"
	"github.com/cuotos/slackstorm/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockEditor struct {
	selection    *dispatcher.Selection
	clearedCount int
}

func (me *MockEditor) Selection() (dispatcher.Selection, bool) {
	if me.selection == nil {
		return dispatcher.Selection{}, false
	}
	return *me.selection, true
}

func (me *MockEditor) ClearSelection() {
	me.clearedCount++
	me.selection = nil
}

type MockDispatcher struct {
	registry   registry.Registry
	outcome    dispatcher.Outcome
	err        error
	calls      int
	lastToken  string
	lastSelect dispatcher.Selection
}

func (md *MockDispatcher) Dispatch(ctx context.Context, sel dispatcher.Selection, channelID string) (dispatcher.Outcome, error) {
	md.calls++
	md.lastSelect = sel
	if md.registry != nil {
		cfg, _ := md.registry.Lookup(ctx, channelID)
		md.lastToken = cfg.WebhookToken
	}
	return md.outcome, md.err
}

func selection(text string) *dispatcher.Selection {
	return &dispatcher.Selection{Text: text, FileName: "Main.java", StartLine: 10, EndLine: 12}
}

var sentOutcome = dispatcher.Outcome{Result: dispatcher.Sent, Title: "Information", Message: "Message Sent."}

func TestEntriesOnePerChannelLabelledWithID(t *testing.T) {
	reg := registry.NewMemoryRegistry(
		registry.ChannelConfig{ChannelID: "general", WebhookToken: "T1"},
		registry.ChannelConfig{ChannelID: "dev-team", WebhookToken: "T2", Alias: "Devs"},
	)
	m := New(reg, &MockDispatcher{}, &notify.Recorder{})

	assert.Equal(t, []Action{
		{Label: "general", ChannelID: "general"},
		{Label: "dev-team", ChannelID: "dev-team"},
	}, m.Entries(context.Background()))
}

func TestVisibility(t *testing.T) {
	ctx := context.Background()
	configured := registry.NewMemoryRegistry(registry.ChannelConfig{ChannelID: "general", WebhookToken: "T1"})

	tcs := []struct {
		Name     string
		Registry registry.Registry
		Editor   Editor
		Expected bool
	}{
		{"no editor", configured, nil, false},
		{"no selection", configured, &MockEditor{}, false},
		{"no channels", registry.NewMemoryRegistry(), &MockEditor{selection: selection("x")}, false},
		{"selection and channel", configured, &MockEditor{selection: selection("x")}, true},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			m := New(tc.Registry, &MockDispatcher{}, &notify.Recorder{})
			assert.Equal(t, tc.Expected, m.Visible(ctx, tc.Editor))
		})
	}
}

func TestInvokeNotifiesAndClearsSelection(t *testing.T) {
	reg := registry.NewMemoryRegistry(registry.ChannelConfig{ChannelID: "general", WebhookToken: "T1"})
	md := &MockDispatcher{outcome: sentOutcome}
	rec := &notify.Recorder{}
	ed := &MockEditor{selection: selection("x=1")}

	outcome, err := New(reg, md, rec).Invoke(context.Background(), ed, "general")
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.Equal(t, dispatcher.Sent, outcome.Result)
	assert.Equal(t, "x=1", md.lastSelect.Text)
	assert.Equal(t, 1, ed.clearedCount)

	title, message, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "Information", title)
	assert.Equal(t, "Message Sent.", message)
	assert.Equal(t, 1, rec.Count())
}

func TestInvokeClearsSelectionOnRejection(t *testing.T) {
	reg := registry.NewMemoryRegistry(registry.ChannelConfig{ChannelID: "general", WebhookToken: "T1"})
	md := &MockDispatcher{outcome: dispatcher.Outcome{Result: dispatcher.RejectedByServer, Title: "Error", Message: "Bad request to Slack."}}
	rec := &notify.Recorder{}
	ed := &MockEditor{selection: selection("x=1")}

	outcome, err := New(reg, md, rec).Invoke(context.Background(), ed, "general")
	require.NoError(t, err)

	assert.Equal(t, dispatcher.RejectedByServer, outcome.Result)
	assert.Equal(t, 1, ed.clearedCount)
	title, _, _ := rec.Last()
	assert.Equal(t, "Error", title)
}

func TestInvokeWithoutSelectionIsNoop(t *testing.T) {
	md := &MockDispatcher{}
	rec := &notify.Recorder{}
	m := New(registry.NewMemoryRegistry(), md, rec)

	for _, ed := range []*MockEditor{{}, {selection: selection("")}} {
		outcome, err := m.Invoke(context.Background(), ed, "general")
		require.NoError(t, err)
		assert.Nil(t, outcome)
		assert.Equal(t, 0, ed.clearedCount)
	}

	assert.Equal(t, 0, md.calls)
	assert.Equal(t, 0, rec.Count())
}

func TestInvokeWithoutEditorIsNoop(t *testing.T) {
	md := &MockDispatcher{}
	rec := &notify.Recorder{}
	reg := registry.NewMemoryRegistry(registry.ChannelConfig{ChannelID: "general", WebhookToken: "T1"})

	outcome, err := New(reg, md, rec).Invoke(context.Background(), nil, "general")
	require.NoError(t, err)

	assert.Nil(t, outcome)
	assert.Equal(t, 0, md.calls)
	assert.Equal(t, 0, rec.Count())
}

func TestInvokeResolvesTokenAtClickTime(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewMemoryRegistry(registry.ChannelConfig{ChannelID: "general", WebhookToken: "OLD"})
	md := &MockDispatcher{registry: reg, outcome: sentOutcome}
	m := New(reg, md, &notify.Recorder{})

	entries := m.Entries(ctx)
	require.Len(t, entries, 1)

	require.NoError(t, reg.Put(ctx, registry.ChannelConfig{ChannelID: "general", WebhookToken: "NEW"}))

	_, err := m.Invoke(ctx, &MockEditor{selection: selection("x")}, entries[0].ChannelID)
	require.NoError(t, err)
	assert.Equal(t, "NEW", md.lastToken)
}

func TestInvokeUnknownChannelReturnsError(t *testing.T) {
	md := &MockDispatcher{err: dispatcher.ErrUnknownChannel}
	rec := &notify.Recorder{}
	ed := &MockEditor{selection: selection("x")}

	_, err := New(registry.NewMemoryRegistry(), md, rec).Invoke(context.Background(), ed, "gone")

	assert.True(t, errors.Is(err, dispatcher.ErrUnknownChannel))
	assert.Equal(t, 0, rec.Count())
	assert.Equal(t, 1, ed.clearedCount)
}
