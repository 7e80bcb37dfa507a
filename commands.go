package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/cuotos/slackstorm/dispatcher"
	"github.com/cuotos/slackstorm/handler"
	"github.com/cuotos/slackstorm/menu"
	"github.com/cuotos/slackstorm/metrics"
	"github.com/cuotos/slackstorm/notify"
	"github.com/cuotos/slackstorm/registry"
	"github.com/mattn/go-isatty"
)

var errNoChannels = errors.New("no channels configured")

type sendCommand struct {
	File  string `short:"f" long:"file" description:"File to take the snippet from, stdin when omitted"`
	Name  string `short:"n" long:"name" description:"File name shown in the message, defaults to the base name of --file"`
	Lines string `short:"l" long:"lines" description:"Line range, e.g. 10-12 (selects lines from --file, labels stdin)"`
	Args  struct {
		Channel string `positional-arg-name:"channel" description:"Channel id to send to"`
	} `positional-args:"yes" required:"yes"`

	stdin  io.Reader
	stdout io.Writer
}

func (c *sendCommand) Execute(_ []string) error {
	a, err := newApp(opts.Config)
	if err != nil {
		return err
	}
	return c.send(context.Background(), a.registry, a.dispatcher)
}

func (c *sendCommand) send(ctx context.Context, reg registry.Registry, d menu.Dispatcher) error {
	stdin, stdout := c.stdin, c.stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	var (
		ed  *snippetEditor
		err error
	)
	if c.File != "" {
		ed, err = newFileEditor(c.File, c.Name, c.Lines)
	} else {
		ed, err = newReaderEditor(stdin, c.Name, c.Lines)
	}
	if err != nil {
		return err
	}

	m := menu.New(reg, d, notifierFor(stdout))
	if !m.Visible(ctx, ed) {
		if len(m.Entries(ctx)) == 0 {
			return errNoChannels
		}
		log.Println("[WARN] nothing selected, not sending")
		return nil
	}

	outcome, err := m.Invoke(ctx, ed, c.Args.Channel)
	if err != nil {
		return err
	}
	if outcome != nil && outcome.Result != dispatcher.Sent {
		return fmt.Errorf("message to %s not sent: %s", c.Args.Channel, outcome.Result)
	}
	return nil
}

// notifierFor draws dialogs on a terminal and falls back to plain log lines
// when output is piped, e.g. when an editor runs slackstorm.
func notifierFor(out io.Writer) notify.Notifier {
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return notify.NewTerminalNotifier(out)
	}
	return notify.LogNotifier{Logger: log.New(out, "", 0)}
}

type channelsListCommand struct {
	stdout io.Writer
}

func (c *channelsListCommand) Execute(_ []string) error {
	a, err := newApp(opts.Config)
	if err != nil {
		return err
	}
	return c.list(context.Background(), a.registry)
}

func (c *channelsListCommand) list(ctx context.Context, reg registry.Registry) error {
	stdout := c.stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	ids := reg.ListChannels(ctx)
	if len(ids) == 0 {
		fmt.Fprintln(stdout, "no channels configured")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tALIAS")
	for _, id := range ids {
		cfg, ok := reg.Lookup(ctx, id)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", id, cfg.DisplayAlias())
	}
	return w.Flush()
}

type channelsAddCommand struct {
	Alias string `short:"a" long:"alias" description:"Name messages are posted as (default SlackStorm)"`
	Args  struct {
		Channel string `positional-arg-name:"channel" description:"Channel id, shown as the menu label"`
		Token   string `positional-arg-name:"token" description:"Webhook token, the part after hooks.slack.com/services/"`
	} `positional-args:"yes" required:"yes"`
}

func (c *channelsAddCommand) Execute(_ []string) error {
	a, err := newApp(opts.Config)
	if err != nil {
		return err
	}
	store, err := a.editableStore()
	if err != nil {
		return err
	}

	err = store.Put(context.Background(), registry.ChannelConfig{
		ChannelID:    c.Args.Channel,
		WebhookToken: c.Args.Token,
		Alias:        c.Alias,
	})
	if err != nil {
		return fmt.Errorf("failed to save channel %s: %w", c.Args.Channel, err)
	}
	log.Printf("[INFO] saved channel %s", c.Args.Channel)
	return nil
}

type channelsRemoveCommand struct {
	Args struct {
		Channel string `positional-arg-name:"channel" description:"Channel id to remove"`
	} `positional-args:"yes" required:"yes"`
}

func (c *channelsRemoveCommand) Execute(_ []string) error {
	a, err := newApp(opts.Config)
	if err != nil {
		return err
	}
	store, err := a.editableStore()
	if err != nil {
		return err
	}

	if err := store.Remove(context.Background(), c.Args.Channel); err != nil {
		return fmt.Errorf("failed to remove channel %s: %w", c.Args.Channel, err)
	}
	log.Printf("[INFO] removed channel %s", c.Args.Channel)
	return nil
}

type serveCommand struct {
	Addr string `long:"addr" description:"Listen address, overrides server.addr"`
}

func (c *serveCommand) Execute(_ []string) error {
	a, err := newApp(opts.Config)
	if err != nil {
		return err
	}

	addr := a.cfg.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}
	if a.cfg.Server.AuthToken == "" {
		log.Printf("[ERROR] AUTH_TOKEN is not set or empty, /channels is open to anyone, this is unsafe")
	}
	if a.cfg.Server.SigningSecret == "" {
		log.Printf("[WARN] SLACK_SIGNING_SECRET is not set, /dispatch requests are not verified")
	}

	relay := handler.NewRealRelayHandler(a.registry, a.dispatcher, a.cfg.Server.SigningSecret)

	mux := http.NewServeMux()
	mux.Handle("/healthz", HealthCheckHandler(a.registry))
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/channels", ChannelsHandler(relay, a.cfg.Server.AuthToken))
	mux.Handle("/dispatch", DispatchHandler(relay))

	log.Printf("[INFO] Server listening on %s", addr)

	return http.ListenAndServe(addr, mux)
}

type lambdaCommand struct{}

func (c *lambdaCommand) Execute(_ []string) error {
	a, err := newApp(opts.Config)
	if err != nil {
		return err
	}

	relay := handler.NewRealRelayHandler(a.registry, a.dispatcher, a.cfg.Server.SigningSecret)
	lambda.Start(LambdaHandler(relay, a.cfg.Server.AuthToken))
	return nil
}
