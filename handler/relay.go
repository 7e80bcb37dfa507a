package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/cuotos/slackstorm/dispatcher"
	"github.com/cuotos/slackstorm/menu"
	"github.com/cuotos/slackstorm/notify"
	"github.com/cuotos/slackstorm/registry"
	"github.com/slack-go/slack"
)

type RelayResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// RelayHandler lets a remote editor plugin use the menu: list the channels to
// build its entries, and post a selection to one of them.
type RelayHandler interface {
	HandleEvent(ctx context.Context, header http.Header, body []byte) (RelayResponse, error)
	Channels(ctx context.Context) RelayResponse
}

type RealRelayHandler struct {
	// SigningSecret, when set, requires requests to carry a valid Slack v0
	// signature (X-Slack-Signature / X-Slack-Request-Timestamp).
	SigningSecret string
	Registry      registry.Registry
	Dispatcher    menu.Dispatcher
}

func NewRealRelayHandler(reg registry.Registry, d menu.Dispatcher, signingSecret string) RelayHandler {
	return &RealRelayHandler{
		SigningSecret: signingSecret,
		Registry:      reg,
		Dispatcher:    d,
	}
}

type dispatchRequest struct {
	Channel string `json:"channel"`
	dispatcher.Selection
}

type dispatchResponse struct {
	Result         string `json:"result"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	ClearSelection bool   `json:"clear_selection"`
}

type channelsResponse struct {
	Visible  bool          `json:"visible"`
	Channels []menu.Action `json:"channels"`
}

// requestEditor is the remote editor's selection as sent in one request.
type requestEditor struct {
	selection dispatcher.Selection
	cleared   bool
}

func (e *requestEditor) Selection() (dispatcher.Selection, bool) {
	return e.selection, e.selection.Text != ""
}

func (e *requestEditor) ClearSelection() {
	e.cleared = true
}

func (h *RealRelayHandler) HandleEvent(ctx context.Context, header http.Header, body []byte) (RelayResponse, error) {
	log.Printf("[TRACE] handling relay request: %s", body)

	// create an empty default response
	resp := RelayResponse{
		StatusCode: http.StatusBadRequest,
		Body:       []byte{},
		Headers:    map[string]string{},
	}

	if len(body) == 0 {
		log.Println("[DEBUG] no body provided in request")
		return resp, nil
	}

	if h.SigningSecret != "" {
		if err := h.verify(header, body); err != nil {
			resp.StatusCode = http.StatusUnauthorized
			return resp, err
		}
	}

	req := dispatchRequest{}
	if err := json.Unmarshal(body, &req); err != nil {
		resp.Body = []byte(err.Error())
		return resp, err
	}
	if req.Channel == "" {
		resp.Body = []byte("channel is required")
		return resp, errors.New("invalid request. no channel provided")
	}

	editor := &requestEditor{selection: req.Selection}
	recorder := &notify.Recorder{}

	outcome, err := menu.New(h.Registry, h.Dispatcher, recorder).Invoke(ctx, editor, req.Channel)
	if errors.Is(err, dispatcher.ErrUnknownChannel) {
		resp.StatusCode = http.StatusNotFound
		resp.Body = []byte(err.Error())
		return resp, err
	}
	if err != nil {
		resp.StatusCode = http.StatusInternalServerError
		return resp, fmt.Errorf("failed to dispatch to %s: %w", req.Channel, err)
	}

	if outcome == nil {
		resp.StatusCode = http.StatusNoContent
		return resp, nil
	}

	title, message, _ := recorder.Last()
	resp.Body, err = json.Marshal(dispatchResponse{
		Result:         outcome.Result.String(),
		Title:          title,
		Message:        message,
		ClearSelection: editor.cleared,
	})
	if err != nil {
		resp.StatusCode = http.StatusInternalServerError
		return resp, err
	}

	resp.Headers["Content-Type"] = "application/json"
	resp.StatusCode = http.StatusOK
	if outcome.Result != dispatcher.Sent {
		resp.StatusCode = http.StatusBadGateway
	}

	return resp, nil
}

func (h *RealRelayHandler) Channels(ctx context.Context) RelayResponse {
	entries := menu.New(h.Registry, h.Dispatcher, nil).Entries(ctx)

	// marshalling a slice of plain structs can't fail
	body, _ := json.Marshal(channelsResponse{
		Visible:  len(entries) > 0,
		Channels: entries,
	})

	return RelayResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func (h *RealRelayHandler) verify(header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, h.SigningSecret)
	if err != nil {
		return err
	}

	if _, err := sv.Write(body); err != nil {
		return err
	}

	return sv.Ensure()
}
