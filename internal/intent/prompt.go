package intent

import (
	"fmt"
	"strings"
)

const extractionInstructions = `You are a helpful assistant that extracts structured hiring details from client conversations.

Extract these fields from the input:
- industry
- location
- roles (as array of strings)
- number_of_positions (sum of all roles)
- urgency (true if the message says urgent/immediate/asap, false if it says not urgent or no time frame or no deadline)

Return ONLY valid JSON.`

// fewShot pairs are presented in this order.
var fewShot = []struct {
	input  string
	output string
}{
	{
		input: "We need 3 backend developers and 2 UI/UX designers urgently in Mumbai for a fintech startup.",
		output: `{
  "industry": "fintech",
  "location": "Mumbai",
  "roles": ["backend developer", "UI/UX designer"],
  "number_of_positions": 5,
  "urgency": true
}`,
	},
	{
		input: "We're hiring 4 delivery leads in Bangalore. No urgency or deadline, we're flexible.",
		output: `{
  "industry": "",
  "location": "Bangalore",
  "roles": ["delivery lead"],
  "number_of_positions": 4,
  "urgency": false
}`,
	},
}

// BuildPrompt renders the single instruction block sent for extraction. The
// client text is fenced with triple quotes so it stays distinct from the
// instructions.
func BuildPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString(extractionInstructions)
	sb.WriteString("\n\nExamples:")
	for i, ex := range fewShot {
		fmt.Fprintf(&sb, "\n%d.\nInput: \"%s\"\nOutput:\n%s\n", i+1, ex.input, ex.output)
	}
	fmt.Fprintf(&sb, "\nNow extract from:\n\"\"\"%s\"\"\"\n", text)
	return sb.String()
}
