package dispatcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const iconEmoji = ":thunder_cloud_and_rain:"

type Escaping string

const (
	// EscapeJSON encodes the payload with the standard JSON encoder.
	EscapeJSON Escaping = "json"
	// EscapeLegacy only escapes double quotes in the snippet and builds the
	// payload by hand, exactly as the editor plugin always has. Newlines and
	// backslashes go out raw.
	EscapeLegacy Escaping = "legacy"
)

func ParseEscaping(s string) (Escaping, error) {
	switch Escaping(strings.ToLower(s)) {
	case "", EscapeJSON:
		return EscapeJSON, nil
	case EscapeLegacy:
		return EscapeLegacy, nil
	}
	return "", fmt.Errorf("unknown escaping %q, expected %q or %q", s, EscapeJSON, EscapeLegacy)
}

type Selection struct {
	Text      string `json:"text"`
	FileName  string `json:"file_name"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Location is the attachment title, e.g. "File: Main.java, Line(s): 10-12".
func (s Selection) Location() string {
	return fmt.Sprintf("File: %s, Line(s): %d-%d", s.FileName, s.StartLine, s.EndLine)
}

type attachment struct {
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	MarkdownIn []string `json:"mrkdwn_in"`
}

type message struct {
	Attachments []attachment `json:"attachments"`
	Username    string       `json:"username"`
	IconEmoji   string       `json:"icon_emoji"`
}

func codeBlock(text string) string {
	return "```" + text + "```"
}

// BuildPayload renders the webhook JSON document for a selection.
func BuildPayload(sel Selection, alias string, escaping Escaping) (string, error) {
	if escaping == EscapeLegacy {
		return buildLegacyPayload(sel, alias), nil
	}

	msg := message{
		Attachments: []attachment{{
			Title:      sel.Location(),
			Text:       codeBlock(sel.Text),
			MarkdownIn: []string{"title", "text"},
		}},
		Username:  alias,
		IconEmoji: iconEmoji,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func buildLegacyPayload(sel Selection, alias string) string {
	text := strings.ReplaceAll(sel.Text, `"`, `\"`)

	var b strings.Builder
	b.WriteString(`{`)
	b.WriteString(`"attachments" : [{`)
	b.WriteString(`"title" : "` + sel.Location() + `",`)
	b.WriteString(`"text" : "` + codeBlock(text) + `",`)
	b.WriteString(`"mrkdwn_in" : ["title", "text"]`)
	b.WriteString(`}],`)
	b.WriteString(`"username" : "` + alias + `",`)
	b.WriteString(`"icon_emoji" : "` + iconEmoji + `"`)
	b.WriteString(`}`)
	return b.String()
}

// FormBody wraps the payload as the single form field Slack webhooks accept.
func FormBody(payload string) string {
	return url.Values{"payload": {payload}}.Encode()
}
