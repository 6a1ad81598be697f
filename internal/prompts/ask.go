package prompts

import "fmt"

// InstructPrompt wraps a free-form question in the instruction/response
// layout that local instruction-tuned models expect.
func InstructPrompt(question string) string {
	return fmt.Sprintf("### 指示\n%s\n### 応答\n", question)
}
