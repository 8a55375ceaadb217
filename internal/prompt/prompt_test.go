package prompt

import (
	"strings"
	"testing"
)

func TestBuilder_Build(t *testing.T) {
	b := New()
	got, err := b.Build("When is the CSC301 assignment due?",
		"The CSC301 assignment is due on Friday.",
		"Submit through the departmental portal.")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"You are Ayodeji",
		"Context: The CSC301 assignment is due on Friday.\n\nSubmit through the departmental portal.",
		"Question: When is the CSC301 assignment due?",
		"Oga, that one no dey inside handout",
		"I never update my brain for that one",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "Ayodeji's Answer:") {
		t.Error("prompt should end with the answer cue")
	}
	if strings.Contains(got, NoContext) {
		t.Error("grounded prompt should not carry the no-context marker")
	}
}

func TestBuilder_BuildWithoutPassages(t *testing.T) {
	b := New()
	for _, passages := range [][]string{nil, {"", "  "}} {
		got, err := b.Build("Wetin be CSC301?", passages...)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(got, NoContext) {
			t.Errorf("an empty search is not an outage, got %q", got)
		}
		if !strings.Contains(got, "Context: \n\nQuestion: Wetin be CSC301?") {
			t.Errorf("expected an empty context section, got %q", got)
		}
	}
}

func TestBuilder_Fallback(t *testing.T) {
	got, err := New().Fallback("Wetin be CSC301?")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Context: "+NoContext) {
		t.Errorf("expected the no-context marker, got %q", got)
	}
	if !strings.Contains(got, "Question: Wetin be CSC301?") {
		t.Error("raw query missing")
	}
}

func TestBuilder_QuestionIsNotInterpreted(t *testing.T) {
	got, err := New().Build("{{.Context}} <b>&</b>")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Question: {{.Context}} <b>&</b>") {
		t.Errorf("question altered: %q", got)
	}
}
