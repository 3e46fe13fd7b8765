package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/phasegrid/internal/graph"
)

// Event names used on the wire.
const (
	EventTick = "tick"
	EventSet  = "set"
)

// DefaultPath is where the Socket.IO handler is mounted.
const DefaultPath = "/socket.io/"

var ErrInvalidInput = errors.New("invalid input")

// TickEvent is the payload of a "tick" event.
type TickEvent struct {
	Tick   uint64             `json:"tick"`
	Values map[string]float64 `json:"values"`
}

func (ev TickEvent) String() string {
	keys := make([]string, 0, len(ev.Values))
	for k := range ev.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	fmt.Fprintf(&b, "tick %d", ev.Tick)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%.4f", k, ev.Values[k])
	}
	return b.String()
}

// payload is the shape emitted to clients. Plain maps survive the
// Socket.IO encoder without relying on struct tags.
func (ev TickEvent) payload() map[string]any {
	values := make(map[string]any, len(ev.Values))
	for k, v := range ev.Values {
		values[k] = v
	}
	return map[string]any{"tick": ev.Tick, "values": values}
}

// DecodeTick converts a received "tick" argument into a TickEvent.
func DecodeTick(data any) (TickEvent, error) {
	var ev TickEvent
	if err := remarshal(data, &ev); err != nil {
		return TickEvent{}, fmt.Errorf("decoding tick: %w", err)
	}
	return ev, nil
}

// DecodeInput converts a received "set" argument into a graph input. The
// group is required, as is one of role or name.
func DecodeInput(data any) (graph.Input, error) {
	var in graph.Input
	if err := remarshal(data, &in); err != nil {
		return graph.Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Group == "" {
		return graph.Input{}, fmt.Errorf("%w: group is required", ErrInvalidInput)
	}
	if in.Role == "" && in.Name == "" {
		return graph.Input{}, fmt.Errorf("%w: one of role or name is required", ErrInvalidInput)
	}
	return in, nil
}

func remarshal(data any, out any) error {
	var raw []byte
	switch v := data.(type) {
	case nil:
		return errors.New("empty payload")
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return err
		}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
