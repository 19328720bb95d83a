package protocol

// StreamEvent is one server-sent event: an optional event name and a JSON-encodable payload.
type StreamEvent struct {
	Name string
	Data any
}

// MessagesStreamEvents renders a finished Anthropic response as the streaming event sequence:
// message_start, a start/delta/stop triple per content block, message_delta and message_stop.
func MessagesStreamEvents(resp *MessagesResponse) []StreamEvent {
	events := []StreamEvent{{
		Name: "message_start",
		Data: map[string]any{
			"type": "message_start",
			"message": map[string]any{
				"id":            resp.ID,
				"type":          "message",
				"role":          "assistant",
				"model":         resp.Model,
				"content":       []any{},
				"stop_reason":   nil,
				"stop_sequence": nil,
				"usage":         map[string]any{"input_tokens": resp.Usage.InputTokens, "output_tokens": 0},
			},
		},
	}}

	for i, block := range resp.Content {
		switch block.Type {
		case BlockText:
			events = append(events, blockStart(i, map[string]any{"type": BlockText, "text": ""}))
			for _, piece := range chunkText(block.Text, streamChunkSize) {
				events = append(events, blockDelta(i, map[string]any{"type": "text_delta", "text": piece}))
			}
		case BlockToolUse:
			events = append(events, blockStart(i, map[string]any{"type": BlockToolUse, "id": block.ID, "name": block.Name, "input": map[string]any{}}))
			events = append(events, blockDelta(i, map[string]any{"type": "input_json_delta", "partial_json": string(block.Input)}))
		default:
			continue
		}
		events = append(events, StreamEvent{
			Name: "content_block_stop",
			Data: map[string]any{"type": "content_block_stop", "index": i},
		})
	}

	return append(events,
		StreamEvent{
			Name: "message_delta",
			Data: map[string]any{
				"type":  "message_delta",
				"delta": map[string]any{"stop_reason": resp.StopReason, "stop_sequence": nil},
				"usage": map[string]any{"output_tokens": resp.Usage.OutputTokens},
			},
		},
		StreamEvent{Name: "message_stop", Data: map[string]any{"type": "message_stop"}},
	)
}

func blockStart(index int, block map[string]any) StreamEvent {
	return StreamEvent{
		Name: "content_block_start",
		Data: map[string]any{"type": "content_block_start", "index": index, "content_block": block},
	}
}

func blockDelta(index int, delta map[string]any) StreamEvent {
	return StreamEvent{
		Name: "content_block_delta",
		Data: map[string]any{"type": "content_block_delta", "index": index, "delta": delta},
	}
}
