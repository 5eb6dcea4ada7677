package pipeline

import (
	"fmt"
	"strings"
)

// renderGallery builds the markdown result document: a header, the generation
// parameters, the prompt in a text fence, and one image block per stored
// candidate in generation order.
func renderGallery(model, size, prompt string, urls []string) string {
	md := make([]string, 0, 4+len(urls))
	md = append(md, "\n\n### Morph Results (multiple candidates)\n")
	md = append(md, fmt.Sprintf("Model: `%s`  \nSize: `%s`  \nCount: `%d`\n", model, size, len(urls)))
	md = append(md, "Prompt used (compact):\n")
	md = append(md, "```text\n"+prompt+"\n```\n")
	for i, url := range urls {
		md = append(md, fmt.Sprintf("Candidate %d:\n\n![](%s)\n", i+1, url))
	}
	return strings.Join(md, "\n")
}
