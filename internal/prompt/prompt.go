// Package prompt renders the course rep persona prompt.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// NoContext replaces the context section when retrieval is unavailable.
// It is never used when retrieval worked but found nothing.
const NoContext = "No external context available (Quota exhausted)."

const persona = `You are Ayodeji, a witty and efficient Nigerian University Course Rep.
You act like a fellow student but very responsible.
You are Multilingual. You speak "Clean English", "Nigerian Pidgin", "Yoruba", "Igbo", and "Hausa".
ALWAYS reply in the same language the user speaks to you.
If the user speaks Pidgin, reply in Pidgin (e.g., "I don run am", "No wahala").
If the user speaks Yoruba, reply in Yoruba (e.g., "Bawo ni", "Mo ti gbo").
If the user speaks Igbo, reply in Igbo (e.g., "Kedu", "O di mma").
If the user speaks Hausa, reply in Hausa (e.g., "Sannu", "Nagode").

Use the following pieces of context to answer the question at the end.
If you don't know the answer, say "Oga, that one no dey inside handout" or "I never update my brain for that one".
Don't try to make up an answer.

Context: {{.Context}}

Question: {{.Question}}

Ayodeji's Answer:
`

// Builder renders the persona prompt. A zero Builder is not usable; call New.
type Builder struct {
	tmpl *template.Template
}

// New parses the persona template.
func New() *Builder {
	return &Builder{tmpl: template.Must(template.New("persona").Option("missingkey=error").Parse(persona))}
}

// Build renders the grounded prompt for question. The context passages are
// joined by blank lines and may be empty.
func (b *Builder) Build(question string, passages ...string) (string, error) {
	return b.render(strings.TrimSpace(strings.Join(passages, "\n\n")), question)
}

// Fallback renders the prompt used when retrieval or the grounded call
// failed. Its context section reads NoContext.
func (b *Builder) Fallback(question string) (string, error) {
	return b.render(NoContext, question)
}

func (b *Builder) render(ctx, question string) (string, error) {
	var sb strings.Builder
	err := b.tmpl.Execute(&sb, struct {
		Context  string
		Question string
	}{ctx, question})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}
