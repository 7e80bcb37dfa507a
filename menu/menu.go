package menu

import (
	"context"
	"log"

	"github.com/cuotos/slackstorm/dispatcher"
	"github.com/cuotos/slackstorm/notify"
	"github.com/cuotos/slackstorm/registry"
)

// Editor is the host editor as seen by the menu.
type Editor interface {
	// Selection returns the active selection, ok is false when nothing is selected.
	Selection() (sel dispatcher.Selection, ok bool)
	ClearSelection()
}

type Dispatcher interface {
	Dispatch(ctx context.Context, sel dispatcher.Selection, channelID string) (dispatcher.Outcome, error)
}

// Action is one "send to channel" entry. It only carries the channel id, the
// token is looked up when the action is invoked.
type Action struct {
	Label     string `json:"label"`
	ChannelID string `json:"channel"`
}

type Menu struct {
	Registry   registry.Registry
	Dispatcher Dispatcher
	Notifier   notify.Notifier
}

func New(reg registry.Registry, d Dispatcher, n notify.Notifier) *Menu {
	return &Menu{
		Registry:   reg,
		Dispatcher: d,
		Notifier:   n,
	}
}

func (m *Menu) Entries(ctx context.Context) []Action {
	ids := m.Registry.ListChannels(ctx)
	actions := make([]Action, 0, len(ids))
	for _, id := range ids {
		actions = append(actions, Action{Label: id, ChannelID: id})
	}
	return actions
}

// Visible reports whether the send actions should be shown at all.
func (m *Menu) Visible(ctx context.Context, ed Editor) bool {
	if ed == nil {
		return false
	}
	if _, ok := ed.Selection(); !ok {
		return false
	}
	return len(m.Registry.ListChannels(ctx)) > 0
}

// Invoke sends the editor's selection to channelID, notifies the user once and
// clears the selection. A nil outcome means there was nothing to send.
func (m *Menu) Invoke(ctx context.Context, ed Editor, channelID string) (*dispatcher.Outcome, error) {
	if ed == nil {
		log.Println("[DEBUG] no editor, nothing to send")
		return nil, nil
	}

	sel, ok := ed.Selection()
	if !ok || sel.Text == "" {
		log.Println("[DEBUG] no text selected, nothing to send")
		return nil, nil
	}
	defer ed.ClearSelection()

	outcome, err := m.Dispatcher.Dispatch(ctx, sel, channelID)
	if err != nil {
		return nil, err
	}

	m.Notifier.Notify(outcome.Title, outcome.Message)
	return &outcome, nil
}
