// Package persona holds every user-facing string the bot sends and the single
// mapping from failure kinds to replies.
package persona

import (
	"fmt"

	"github.com/ayodejiades/ayodeji/internal/failure"
)

const (
	Name = "Ayodeji"

	Greeting = "How far! I be Ayodeji, your Course Rep. I dey hear English, Pidgin, Yoruba, Igbo, and Hausa. Send VN, PDF, or just ask question."

	Ingested     = "I don digest that PDF directly into my brain. Ask me anything about am!"
	IngestFailed = "Omo, I struggle to read that file. Send am again properly."
	PDFOnly      = "Abeg send only PDF. I no dey read this one."

	BrainFailure = "My brain dey network failure small. Ask me again."
	NotHeard     = "Oga, I no hear you clear. Type am abeg."

	Online = "Ayodeji is online on Telegram!"
)

// Privacy returns the /privacy reply pointing at policyURL.
func Privacy(policyURL string) string {
	return fmt.Sprintf("Oga, I dey keep your secret safe. I no dey share your number with anybody. Read our full policy here: %s", policyURL)
}

// VoiceReply formats the answer to a voice note, echoing what was heard.
func VoiceReply(heard, answer string) string {
	return fmt.Sprintf("🎤 %s\n\n🤖 %s", heard, answer)
}

// Reply maps a failure to the apology shown to the user. Errors without a
// known kind get the generic failure reply.
func Reply(err error) string {
	switch failure.KindOf(err) {
	case failure.KindIngest:
		return IngestFailed
	case failure.KindTranscription:
		return NotHeard
	case failure.KindUnsupported:
		return PDFOnly
	default:
		return BrainFailure
	}
}
