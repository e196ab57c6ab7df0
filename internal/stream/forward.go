// Package stream implements the streaming fan-out for llm.chat_stream
// (spec §4.6): the dispatcher does not collect a single response for this
// method; it creates a bounded event channel and spawns the provider
// stream, forwarding token/done/error events until the channel closes.
package stream

import (
	"context"

	"github.com/mcp-scooter/bridge/internal/llm"
	"github.com/mcp-scooter/bridge/internal/rpc"
)

// Forwarder drives one provider stream into rpc.StreamEvent frames.
type Forwarder struct {
	providers *llm.Registry
}

// New constructs a Forwarder backed by a provider registry.
func New(providers *llm.Registry) *Forwarder {
	return &Forwarder{providers: providers}
}

// ChatStream implements rpc.StreamHandler for llm.chat_stream. Back-pressure:
// if the transport drops the receiver, its context is cancelled, the
// forwarder's send select unblocks on ctx.Done instead of delivering, and
// it stops consuming from the provider channel — which is itself watching
// the same ctx and stops producing (spec §4.6, §5 "Cancellation").
func (f *Forwarder) ChatStream(ctx context.Context, id interface{}, req llm.ChatRequest) (<-chan rpc.StreamEvent, error) {
	provider, model, ok := f.providers.Resolve(req.Model)
	if !ok {
		return nil, rpc.NewError(rpc.CodeProviderError, "unknown model: "+req.Model)
	}
	req.Model = model

	chunks, err := provider.Stream(ctx, req)
	if err != nil {
		return nil, rpc.NewError(rpc.CodeProviderError, err.Error())
	}

	out := make(chan rpc.StreamEvent, 16)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case chunk, ok := <-chunks:
				if !ok {
					return
				}
				event := toEvent(id, model, chunk)
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
				if event.EventType == "done" || event.EventType == "error" {
					return
				}
			}
		}
	}()

	return out, nil
}

func toEvent(id interface{}, model string, chunk llm.Chunk) rpc.StreamEvent {
	if chunk.Err != nil {
		return rpc.StreamEvent{ID: id, EventType: "error", Error: chunk.Err.Error(), Model: model}
	}
	if chunk.Done {
		return rpc.StreamEvent{ID: id, EventType: "done", FinishReason: chunk.FinishReason, Model: model}
	}
	return rpc.StreamEvent{ID: id, EventType: "token", Token: chunk.Token, Model: model}
}
