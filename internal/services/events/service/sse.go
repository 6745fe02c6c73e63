package service

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// Format renders one message in the event-stream wire format. The JSON keeps
// non ASCII text as is and does not escape HTML
func Format(id, event string, data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	body := bytes.TrimRight(buf.Bytes(), "\n")

	var b bytes.Buffer
	b.Grow(len(id) + len(event) + len(body) + 24)
	b.WriteString("id: ")
	b.WriteString(id)
	b.WriteString("\nevent: ")
	b.WriteString(event)
	b.WriteString("\ndata: ")
	b.Write(body)
	b.WriteString("\n\n")
	return b.String(), nil
}

// Preamble opens every stream: the reconnect hint then the ready marker
func Preamble(retryMs int) string {
	return "retry: " + strconv.Itoa(retryMs) + "\n\nevent: ready\ndata: {}\n\n"
}

// Heartbeat is the n-th keepalive comment line
func Heartbeat(n int) string { return ": keep-" + strconv.Itoa(n) + "\n\n" }
