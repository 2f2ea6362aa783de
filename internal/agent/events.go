package agent

// ProgressType tags a progress event.
type ProgressType string

const (
	ProgressIterationStart ProgressType = "iteration_start"
	ProgressThinking       ProgressType = "thinking"
	ProgressToolStart      ProgressType = "tool_start"
	ProgressToolEnd        ProgressType = "tool_end"
	ProgressResponse       ProgressType = "response"
	ProgressStepComplete   ProgressType = "step_complete"
)

// ProgressEvent is a real-time step event emitted while the loop runs.
// The transport (SSE stream, log line, UI) is the consumer's concern.
type ProgressEvent struct {
	Type      ProgressType `json:"type"`
	Iteration int          `json:"iteration"`
	Content   string       `json:"content,omitempty"`
	ToolName  string       `json:"tool_name,omitempty"`
}

// Sink receives progress events. Emit is called synchronously from the loop
// and must not block; implementations that cannot keep up should drop.
type Sink interface {
	Emit(ProgressEvent)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(ProgressEvent) {}

// ChannelSink forwards events to a buffered channel, dropping events when
// the buffer is full so the loop never stalls on a slow consumer.
type ChannelSink struct {
	ch chan ProgressEvent
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSink{ch: make(chan ProgressEvent, buffer)}
}

// Emit implements Sink.
func (s *ChannelSink) Emit(ev ProgressEvent) {
	select {
	case s.ch <- ev:
	default:
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan ProgressEvent {
	return s.ch
}

// Close closes the event channel. Call only after the loop has returned.
func (s *ChannelSink) Close() {
	close(s.ch)
}
