package agent

import (
	"fmt"

	"github.com/driftlock/agentloop/internal/agent/models"
)

// CompletionSentinel is the fixed token the operating directive asks the
// model to append when it believes the task is finished.
const CompletionSentinel = "[TASK_COMPLETE]"

const operatingDirective = `You are an autonomous assistant working through a task with access to external tools.

Follow this process:
1. Plan your approach step by step before acting.
2. When you need information or side effects, invoke the available tools.
3. Reason over every tool result before deciding the next step.
4. When the task is complete, reply with your final answer and end it with ` + CompletionSentinel + `.`

const directiveAck = "Understood. I will plan step by step, use the available tools when needed, " +
	"and mark my final answer with " + CompletionSentinel + "."

// BuildContext assembles the turn sequence fed to the model. The generation
// call path has no native system-role slot, so the operating directive (plus
// an optional persona) is installed as a synthetic user/model turn pair
// prepended before the real history.
func BuildContext(persona string, messages []models.Message) []models.Message {
	directive := operatingDirective
	if persona != "" {
		directive = fmt.Sprintf("%s\n\nAdditional instructions for this conversation:\n%s", operatingDirective, persona)
	}

	history := make([]models.Message, 0, len(messages)+2)
	history = append(history,
		models.Message{Role: "user", Content: directive},
		models.Message{Role: "model", Content: directiveAck},
	)
	history = append(history, messages...)
	return history
}
