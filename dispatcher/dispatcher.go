package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/cuotos/slackstorm/metrics"
	"github.com/cuotos/slackstorm/registry"
)

const DefaultEndpoint = "https://hooks.slack.com/services/"

const (
	TitleInformation = "Information"
	TitleError       = "Error"

	MessageSent         = "Message Sent."
	MessageBadRequest   = "Bad request to Slack."
	MessageNotSent      = "An Error Occurred. Message not sent."
	MessageUnreachable  = "Unable to reach Slack. Message not sent."
	slackSuccessfulBody = "ok"
)

var ErrUnknownChannel = errors.New("unknown channel")

type Result int

const (
	Sent Result = iota
	RejectedByServer
	TransportError
)

func (r Result) String() string {
	switch r {
	case Sent:
		return "sent"
	case RejectedByServer:
		return "rejected"
	case TransportError:
		return "transport_error"
	}
	return "unknown"
}

// Outcome is what the user gets told about a single dispatch.
type Outcome struct {
	Result  Result
	Title   string
	Message string
	// Err is set for transport failures only.
	Err error
}

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Dispatcher struct {
	Registry registry.Registry
	Client   HTTPClient
	Endpoint string
	Escaping Escaping
}

func NewDispatcher(reg registry.Registry, client HTTPClient, escaping Escaping) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	if escaping == "" {
		escaping = EscapeJSON
	}
	return &Dispatcher{
		Registry: reg,
		Client:   client,
		Endpoint: DefaultEndpoint,
		Escaping: escaping,
	}
}

// Dispatch posts one selection to the webhook configured for channelID. The
// channel is resolved on every call so config edits apply immediately. An
// error is only returned when the channel cannot be resolved or the payload
// cannot be built; everything that happens on the wire is an Outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, sel Selection, channelID string) (Outcome, error) {
	cfg, ok := d.Registry.Lookup(ctx, channelID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownChannel, channelID)
	}

	payload, err := BuildPayload(sel, cfg.DisplayAlias(), d.Escaping)
	if err != nil {
		return Outcome{}, err
	}

	log.Printf("[DEBUG] dispatching %s to channel %s", sel.Location(), channelID)
	outcome := d.post(ctx, cfg.WebhookToken, FormBody(payload))
	metrics.IncDispatch(outcome.Result.String())

	if outcome.Err != nil {
		log.Printf("[ERROR] failed to post to slack channel %s: %s", channelID, outcome.Err)
	} else {
		log.Printf("[DEBUG] channel %s dispatch result: %s", channelID, outcome.Result)
	}
	return outcome, nil
}

func (d *Dispatcher) post(ctx context.Context, token string, body string) Outcome {
	endpoint := d.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+token, strings.NewReader(body))
	if err != nil {
		return transportFailure(fmt.Errorf("invalid webhook url: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.Client.Do(req)
	if err != nil {
		return transportFailure(err)
	}
	defer resp.Body.Close()

	return classify(resp)
}

func classify(resp *http.Response) Outcome {
	if resp.StatusCode != http.StatusOK {
		log.Printf("[DEBUG] slack responded with status %d", resp.StatusCode)
		return Outcome{Result: RejectedByServer, Title: TitleError, Message: MessageBadRequest}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[WARN] unable to read slack response body: %s", err)
		return Outcome{Result: RejectedByServer, Title: TitleError, Message: MessageNotSent}
	}

	// the body is compared line-joined, so a trailing newline still counts as "ok"
	body := strings.NewReplacer("\r", "", "\n", "").Replace(string(raw))
	if body != slackSuccessfulBody {
		log.Printf("[DEBUG] slack responded with body %q", body)
		return Outcome{Result: RejectedByServer, Title: TitleError, Message: MessageNotSent}
	}

	return Outcome{Result: Sent, Title: TitleInformation, Message: MessageSent}
}

func transportFailure(err error) Outcome {
	return Outcome{Result: TransportError, Title: TitleError, Message: MessageUnreachable, Err: err}
}
