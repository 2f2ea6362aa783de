package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/driftlock/agentloop/internal/agent/models"
	provider "github.com/driftlock/agentloop/internal/provider/models"
	"github.com/driftlock/agentloop/internal/tool"
	"github.com/google/uuid"
)

const (
	// fallbackResponse is returned when the iteration budget is exhausted
	// and no textual answer was ever produced.
	fallbackResponse = "Unable to complete the task within the allowed number of iterations."

	// thoughtSeparator joins the thought fragments of a single step.
	thoughtSeparator = "\n\n"

	defaultMaxIterations = 10
)

// Options configure an Engine.
type Options struct {
	// MaxIterations bounds the number of generate/execute rounds.
	MaxIterations int

	// ToolTimeout, when positive, bounds each individual tool call.
	// Without it a hung provider process stalls the loop until the
	// surrounding context is cancelled.
	ToolTimeout time.Duration

	// Persona is an optional agent persona appended to the operating
	// directive.
	Persona string

	// SearchStore optionally names a managed retrieval corpus attached as
	// a native model tool.
	SearchStore string

	// Generation parameters passed through to the provider.
	Temperature     *float32
	MaxOutputTokens int32

	// Sink receives progress events. Defaults to NopSink.
	Sink Sink
}

// Engine drives the generate / tool-execute / re-generate cycle until the
// model produces a final answer or the iteration budget runs out.
type Engine struct {
	provider provider.Provider
	opts     Options
	sink     Sink
}

// New creates an Engine for the given provider.
func New(p provider.Provider, opts Options) *Engine {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = defaultMaxIterations
	}
	sink := opts.Sink
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		provider: p,
		opts:     opts,
		sink:     sink,
	}
}

// Run executes the loop over the given message history with the given tool
// surface (tools may be nil). It never returns an error: generation failures
// and tool failures degrade into data inside the returned result, so the
// caller always receives a well-formed AgenticResult.
func (e *Engine) Run(ctx context.Context, messages []models.Message, tools Toolbox) *models.AgenticResult {
	history := BuildContext(e.opts.Persona, messages)

	var decls []tool.Declaration
	if tools != nil {
		decls = tools.Declarations()
	}

	var steps []models.IterationStep
	var final string
	var bestText string

	iteration := 0
	for iteration < e.opts.MaxIterations {
		iteration++
		e.sink.Emit(ProgressEvent{Type: ProgressIterationStart, Iteration: iteration})

		var thoughts []string
		var text strings.Builder
		var calls []models.ToolCall

		err := e.provider.GenerateStream(ctx, &provider.GenerateRequest{
			History:     history,
			Tools:       decls,
			SearchStore: e.opts.SearchStore,
			Config: &provider.GenerateConfig{
				Temperature:     e.opts.Temperature,
				MaxOutputTokens: e.opts.MaxOutputTokens,
			},
		}, func(chunk provider.Chunk) error {
			switch chunk := chunk.(type) {
			case provider.ThoughtChunk:
				thoughts = append(thoughts, chunk.Text)
				e.sink.Emit(ProgressEvent{Type: ProgressThinking, Iteration: iteration, Content: chunk.Text})
			case provider.TextChunk:
				text.WriteString(chunk.Text)
			case provider.CallChunk:
				call := chunk.Call
				if call.ID == "" {
					call.ID = uuid.NewString()
				}
				calls = append(calls, call)
			}
			return nil
		})

		step := models.IterationStep{
			Iteration: iteration,
			Thought:   strings.Join(thoughts, thoughtSeparator),
		}

		if err != nil {
			// Generation failure is fatal to this invocation, but it is
			// absorbed into the result rather than propagated.
			slog.Error("generation failed", "iteration", iteration, "error", err)
			step.Response = fmt.Sprintf("Error: generation failed: %v", err)
			final = step.Response
			steps = append(steps, step)
			e.sink.Emit(ProgressEvent{Type: ProgressResponse, Iteration: iteration, Content: step.Response})
			e.sink.Emit(ProgressEvent{Type: ProgressStepComplete, Iteration: iteration})
			break
		}

		if len(calls) > 0 {
			// Text alongside tool calls is not terminal, but keep it as a
			// candidate answer in case the budget runs out.
			if stray := stripSentinel(text.String()); stray != "" {
				bestText = stray
			}

			records, results := e.executeCalls(ctx, tools, iteration, calls)
			step.ToolCalls = records
			steps = append(steps, step)

			// Append the model's raw invocation turn plus a synthetic turn
			// carrying all results.
			history = append(history,
				models.Message{Role: "model", ToolCalls: calls},
				models.Message{Role: "function", ToolResults: results},
			)
			e.sink.Emit(ProgressEvent{Type: ProgressStepComplete, Iteration: iteration})
			continue
		}

		answer := stripSentinel(text.String())
		if answer == "" {
			// Neither tool calls nor text: count the round and try again.
			slog.Warn("empty generation round", "iteration", iteration)
			continue
		}

		// Any non-empty text response ends the loop, sentinel or not.
		step.Response = answer
		final = answer
		steps = append(steps, step)
		e.sink.Emit(ProgressEvent{Type: ProgressResponse, Iteration: iteration, Content: answer})
		e.sink.Emit(ProgressEvent{Type: ProgressStepComplete, Iteration: iteration})
		break
	}

	if final == "" {
		final = bestText
	}
	if final == "" {
		final = fallbackResponse
	}

	return aggregate(final, steps, iteration)
}

// executeCalls runs every requested invocation sequentially in declaration
// order, recording one ToolCallRecord per call. Failures become error
// records and serialized error payloads; they never abort the loop.
func (e *Engine) executeCalls(ctx context.Context, tools Toolbox, iteration int, calls []models.ToolCall) ([]models.ToolCallRecord, []models.ToolResult) {
	records := make([]models.ToolCallRecord, 0, len(calls))
	results := make([]models.ToolResult, 0, len(calls))

	for _, call := range calls {
		if call.Args == nil {
			call.Args = map[string]any{}
		}
		input, marshalErr := json.Marshal(call.Args)
		if marshalErr != nil {
			input = []byte("{}")
		}

		e.sink.Emit(ProgressEvent{Type: ProgressToolStart, Iteration: iteration, ToolName: call.Name})

		start := time.Now()
		output, err := e.callTool(ctx, tools, call)
		duration := time.Since(start).Milliseconds()

		record := models.ToolCallRecord{
			ID:         call.ID,
			Name:       call.Name,
			Input:      string(input),
			DurationMs: duration,
		}
		result := models.ToolResult{
			ID:   call.ID,
			Name: call.Name,
		}

		if err != nil {
			slog.Warn("tool call failed", "tool", call.Name, "iteration", iteration, "error", err)
			payload, _ := json.Marshal(map[string]string{"error": err.Error()})
			record.Status = models.CallStatusError
			record.Output = string(payload)
			result.Content = err.Error()
			result.IsError = true
		} else {
			if output == "" {
				output = "(no output)"
			}
			record.Status = models.CallStatusSuccess
			record.Output = output
			result.Content = output
		}

		records = append(records, record)
		results = append(results, result)

		e.sink.Emit(ProgressEvent{Type: ProgressToolEnd, Iteration: iteration, ToolName: call.Name, Content: record.Output})
	}

	return records, results
}

// callTool dispatches a single call with the per-call timeout applied.
func (e *Engine) callTool(ctx context.Context, tools Toolbox, call models.ToolCall) (string, error) {
	if tools == nil {
		return "", fmt.Errorf("unknown tool %q: no tools are available", call.Name)
	}
	if e.opts.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.ToolTimeout)
		defer cancel()
	}
	return tools.Call(ctx, call.Name, call.Args)
}

// stripSentinel removes the completion sentinel and surrounding whitespace.
func stripSentinel(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, CompletionSentinel, ""))
}
