package agent

import (
	"github.com/driftlock/agentloop/internal/agent/models"
)

// aggregate flattens per-step thoughts and tool-call records across all
// iterations into the final result, independent of iteration boundaries.
func aggregate(final string, steps []models.IterationStep, totalIterations int) *models.AgenticResult {
	var thoughts []string
	var records []models.ToolCallRecord

	for _, step := range steps {
		if step.Thought != "" {
			thoughts = append(thoughts, step.Thought)
		}
		records = append(records, step.ToolCalls...)
	}

	return &models.AgenticResult{
		FinalResponse:   final,
		Steps:           steps,
		TotalIterations: totalIterations,
		Thoughts:        thoughts,
		ToolCalls:       records,
	}
}
