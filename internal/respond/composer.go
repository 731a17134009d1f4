package respond

import "fmt"

// ComposePrompt builds the instruction text sent to the generative model.
// Pure and deterministic: the user's question, the optional enrichment
// summary, and the fixed French/English section labels. An empty summary
// omits the information clause entirely.
func ComposePrompt(question, summary string) string {
	if summary != "" {
		return fmt.Sprintf(
			"Respond to the following question in French: %s\n\n"+
				"Also, here is the information you requested: %s\n\n"+
				"Also provide the English translation of the response.\n\n"+
				"French:\n\nEnglish:",
			question, summary)
	}
	return fmt.Sprintf(
		"Respond to the following question in French: %s\n\n"+
			"Also provide the English translation of the response.\n\n"+
			"French:\n\nEnglish:",
		question)
}
