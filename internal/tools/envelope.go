package tools

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gcalendar-mcp/internal/toolerr"
)

// ContentTypeText is the only content type tool results carry.
const ContentTypeText = "text"

// TextContent is one entry of an envelope's content list.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope is the uniform result of every tool call.
type Envelope struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError"`
}

func textEnvelope(text string, isError bool) Envelope {
	return Envelope{
		Content: []TextContent{{Type: ContentTypeText, Text: text}},
		IsError: isError,
	}
}

// Text returns the text of the single content entry.
func (e Envelope) Text() string {
	if len(e.Content) == 0 {
		return ""
	}
	return e.Content[0].Text
}

// Success wraps an operation result. Strings pass through unchanged; any
// other value is rendered as indented JSON.
func Success(value any) Envelope {
	env, err := success(value)
	if err != nil {
		return Failure(err)
	}
	return env
}

func success(value any) (Envelope, error) {
	if s, ok := value.(string); ok {
		return textEnvelope(s, false), nil
	}

	text, err := renderJSON(value)
	if err != nil {
		return Envelope{}, toolerr.Wrap(toolerr.Internal, "failed to encode result", err)
	}
	return textEnvelope(text, false), nil
}

// Failure wraps an error as "Error: <message>".
func Failure(err error) Envelope {
	te := toolerr.From(err)
	if te == nil {
		te = toolerr.New(toolerr.Internal, "unknown error")
	}
	return textEnvelope("Error: "+te.Error(), true)
}

// UnknownTool is the envelope for a call naming no registered tool.
func UnknownTool(name string) Envelope {
	return textEnvelope("Unknown tool: "+name, true)
}

// CallToolResult converts the envelope to the mcp-go result type.
func (e Envelope) CallToolResult() *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(e.Content))
	for _, c := range e.Content {
		content = append(content, mcp.NewTextContent(c.Text))
	}
	return &mcp.CallToolResult{Content: content, IsError: e.IsError}
}

func renderJSON(value any) (string, error) {
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Slice && rv.IsNil() {
		return "[]", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
