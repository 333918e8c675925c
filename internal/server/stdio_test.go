package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gcalendar-mcp/internal/tools"
)

func responseLines(t *testing.T, out *bytes.Buffer) []string {
	t.Helper()
	text := strings.TrimSuffix(out.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestServeStdio_AnswersEachLine(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		``,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`not json`,
	}, "\n") + "\n")
	var out bytes.Buffer

	require.NoError(t, ServeStdio(context.Background(), router, in, &out, discardLogger()))

	lines := responseLines(t, &out)
	require.Len(t, lines, 2)

	byID := map[string]testResponse{}
	for _, line := range lines {
		resp := decodeResponse(t, []byte(line))
		byID[string(resp.ID)] = resp
	}
	require.Contains(t, byID, "1")
	assert.Nil(t, byID["1"].Error)
	require.Contains(t, byID, "null")
	require.NotNil(t, byID["null"].Error)
	assert.Equal(t, -32700, byID["null"].Error.Code)
}

func TestServeStdio_HandlesMessagesConcurrently(t *testing.T) {
	release := make(chan struct{})
	router, _ := newTestRouter(t, map[string]tools.Operation{
		tools.ToolGetEvent: func(ctx context.Context, _ tools.Arguments) (any, error) {
			select {
			case <-release:
				return "released", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
		tools.ToolListColors: func(context.Context, tools.Arguments) (any, error) {
			close(release)
			return "colors", nil
		},
	})

	in := strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_event","arguments":{"calendarId":"primary","eventId":"e1"}}}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_colors","arguments":{}}}` + "\n")
	var out bytes.Buffer

	require.NoError(t, ServeStdio(context.Background(), router, in, &out, discardLogger()))

	lines := responseLines(t, &out)
	require.Len(t, lines, 2)

	texts := map[string]string{}
	for _, line := range lines {
		resp := decodeResponse(t, []byte(line))
		result := decodeCallResult(t, []byte(line))
		assert.False(t, result.IsError)
		texts[string(resp.ID)] = result.Content[0].Text
	}
	assert.Equal(t, map[string]string{"1": "released", "2": "colors"}, texts)
}

func TestServeStdio_StopsOnCancel(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ServeStdio(ctx, router, pr, io.Discard, discardLogger())
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ServeStdio did not return after cancellation")
	}
}

func TestServeStdio_ReadError(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	err := ServeStdio(context.Background(), router, iotest.ErrReader(errors.New("boom")), io.Discard, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read input")
	assert.Contains(t, err.Error(), "boom")
}
