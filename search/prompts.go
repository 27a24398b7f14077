package search

import (
	"github.com/tmc/langchaingo/prompts"
)

// summaryTemplate asks for a short explanation of why one researcher matched.
const summaryTemplate = `Research Query: '{{.query}}'.
Professor: {{.name}}.
CV Snippet: {{.snippet}}

Based on the research query and the attached CV above, please provide a short summary explaining why this professor was selected, highlighting how the CV content matches the research interests. Focus on the positives and the matching components.`

// filterTemplate asks the model to choose which report entries to keep.
const filterTemplate = `You are matching a user's research inquiry to a list of researchers.
- Carefully read the inquiry and each researcher's portfolio.
- Keep a researcher **only if** their expertise meaningfully aligns with the inquiry.
- Do not rewrite, summarise or reorder the portfolios.

Answer with a single JSON object and nothing else, listing the result numbers of the researchers to keep:
{"keep": [1, 3]}
Use {"keep": []} if no researcher aligns.

User inquiry: {{.query}}

Researchers' portfolios:
{{.portfolios}}`

func newSummaryPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(summaryTemplate, []string{"query", "name", "snippet"})
}

func newFilterPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(filterTemplate, []string{"query", "portfolios"})
}
