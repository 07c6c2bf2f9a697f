package terminal

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/clouide/clouide/internal/models"
)

// PingFrame is the client keep-alive; it is never forwarded to the shell
const PingFrame = "__ping__"

// FrameKind classifies a client->server frame
type FrameKind int

const (
	// FrameInput is raw keystroke bytes
	FrameInput FrameKind = iota
	// FramePing is a keep-alive
	FramePing
	// FrameResize is a window size directive
	FrameResize
)

// Frame is a decoded client->server frame
type Frame struct {
	Kind FrameKind
	Data []byte
	Rows int
	Cols int
}

// ParseFrame classifies a client frame. Only a JSON object whose type is
// "resize" is a directive; any other text, JSON or not, is input.
func ParseFrame(data []byte) Frame {
	if string(data) == PingFrame {
		return Frame{Kind: FramePing}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var msg models.ResizeMessage
		if err := json.Unmarshal(trimmed, &msg); err == nil && msg.Type == "resize" {
			return Frame{Kind: FrameResize, Rows: msg.Rows, Cols: msg.Cols}
		}
	}

	return Frame{Kind: FrameInput, Data: data}
}

// utf8Chunker turns arbitrary PTY reads into valid UTF-8 text frames. A
// multi-byte sequence split across two reads is held back until it completes.
type utf8Chunker struct {
	pending []byte
}

// Decode returns the printable text for p, carrying an incomplete trailing
// sequence over to the next call. Invalid bytes become U+FFFD.
func (c *utf8Chunker) Decode(p []byte) string {
	data := p
	if len(c.pending) > 0 {
		data = append(c.pending, p...)
		c.pending = nil
	}

	if keep := incompleteSuffix(data); keep > 0 {
		c.pending = append([]byte(nil), data[len(data)-keep:]...)
		data = data[:len(data)-keep]
	}

	return strings.ToValidUTF8(string(data), "�")
}

// Flush returns whatever is still pending
func (c *utf8Chunker) Flush() string {
	if len(c.pending) == 0 {
		return ""
	}
	out := strings.ToValidUTF8(string(c.pending), "�")
	c.pending = nil
	return out
}

// incompleteSuffix returns the length of a truncated UTF-8 sequence at the end of b
func incompleteSuffix(b []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(b); i++ {
		c := b[len(b)-i]
		if c < utf8.RuneSelf {
			return 0
		}
		if !utf8.RuneStart(c) {
			continue
		}

		need := 2
		switch {
		case c >= 0xF0:
			need = 4
		case c >= 0xE0:
			need = 3
		}
		if need > i {
			return i
		}
		return 0
	}
	return 0
}
