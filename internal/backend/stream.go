// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// =============================================================================
// STREAMING TYPES
// =============================================================================

// dataMarker is the only line prefix that carries content. Everything
// else on the stream (blank separators, keep-alives, comments) is
// dropped without being an error.
const dataMarker = "data: "

// doneSentinel is the advisory end-of-stream payload. It is discarded;
// the read loop ends on transport close, not on the sentinel.
const doneSentinel = "[DONE]"

// readBufferSize is the transport read granularity. Frames routinely
// span reads; the carry buffer below stitches them back together.
const readBufferSize = 4096

// FragmentCallback receives one content fragment per well-formed frame,
// in frame order, exactly once each.
type FragmentCallback func(fragment string)

// StreamError is a failure mid-stream. Fragments delivered before the
// failure are not retracted; Partial carries the prefix so callers can
// keep it as a valid truncated answer.
type StreamError struct {
	Partial string
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// chatRequest is the chat endpoint's request body.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// StreamChat sends one user message and consumes the streamed reply.
// onFragment is invoked for every well-formed frame's payload, in the
// exact order frames appear on the wire. A non-2xx status fails the
// call before any read. Cancelling ctx tears down the connection.
func (c *Client) StreamChat(ctx context.Context, sessionID, content string, onFragment FragmentCallback) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(chatRequest{SessionID: sessionID, Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamingClient.Do(req)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp)
	}

	return c.processStream(ctx, resp.Body, onFragment)
}

// processStream reads the response body and frames it into events.
//
// A network read may split a logical line anywhere, including inside
// the "data: " marker, so bytes are accumulated in a carry buffer and
// only complete newline-terminated lines are framed; the trailing
// partial line waits for the next read.
func (c *Client) processStream(ctx context.Context, body io.Reader, onFragment FragmentCallback) error {
	var (
		carry     []byte
		delivered strings.Builder
		buf       = make([]byte, readBufferSize)
	)

	emit := func(fragment string) {
		delivered.WriteString(fragment)
		onFragment(fragment)
	}

	for {
		select {
		case <-ctx.Done():
			return &StreamError{Partial: delivered.String(), Err: ctx.Err()}
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			carry = append(carry, buf[:n]...)
			carry = drainLines(carry, emit)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				// A final unterminated line is still a candidate frame.
				if len(carry) > 0 {
					handleLine(carry, emit)
				}
				return nil
			}
			return &StreamError{Partial: delivered.String(), Err: err}
		}
	}
}

// drainLines frames every complete line in the carry buffer and returns
// the unterminated remainder.
func drainLines(carry []byte, emit FragmentCallback) []byte {
	for {
		idx := bytes.IndexByte(carry, '\n')
		if idx < 0 {
			return carry
		}
		handleLine(carry[:idx], emit)
		carry = carry[idx+1:]
	}
}

// handleLine applies the event parsing rule to one candidate line. Only
// lines starting with the data marker are meaningful; the payload is
// the remainder with trailing whitespace trimmed. Leading spaces stay:
// fragments are append deltas and a delta may legitimately begin with a
// space. The [DONE] sentinel and empty payloads are discarded.
func handleLine(line []byte, emit FragmentCallback) {
	text := strings.TrimRight(string(line), "\r")
	if !strings.HasPrefix(text, dataMarker) {
		return
	}
	payload := strings.TrimRight(text[len(dataMarker):], " \t")
	if payload == "" || strings.TrimSpace(payload) == doneSentinel {
		return
	}
	emit(payload)
}
