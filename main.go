package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hashicorp/logutils"
	"github.com/jessevdk/go-flags"
)

var logFilter = &logutils.LevelFilter{
	Levels:   []logutils.LogLevel{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"},
	MinLevel: logutils.LogLevel("INFO"),
	Writer:   os.Stderr,
}

type Options struct {
	Config string `short:"c" long:"config" env:"SLACKSTORM_CONFIG" description:"Path to the slackstorm config file (default slackstorm.yaml)"`
}

var opts Options

func main() {
	log.SetOutput(logFilter)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := run(os.Args[1:]); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				fmt.Fprintln(os.Stdout, flagsErr)
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, flagsErr)
			os.Exit(1)
		}
		log.Fatal("[FATAL] ", err)
	}
}

func run(args []string) error {
	parser := newParser()
	_, err := parser.ParseArgs(args)
	return err
}

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)

	parser.AddCommand("send",
		"Send a snippet to a channel",
		"Posts the selected lines of a file (or stdin) to the channel's Slack webhook.",
		&sendCommand{})

	channels, _ := parser.AddCommand("channels",
		"Manage configured channels",
		"List, add or remove the channels snippets can be sent to.",
		&struct{}{})
	channels.AddCommand("list", "List channels", "Lists channels in menu order.", &channelsListCommand{})
	channels.AddCommand("add", "Add or update a channel", "Stores a channel's webhook token and alias.", &channelsAddCommand{})
	channels.AddCommand("remove", "Remove a channel", "Removes a channel from the store.", &channelsRemoveCommand{})

	parser.AddCommand("serve",
		"Run the relay server",
		"Serves /dispatch and /channels for editor plugins, plus /healthz and /metrics.",
		&serveCommand{})

	parser.AddCommand("lambda",
		"Run as an AWS Lambda function URL",
		"Handles relay dispatch requests delivered through a Lambda function URL.",
		&lambdaCommand{})

	return parser
}
