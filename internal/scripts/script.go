package scripts

import "strings"

// Speaker identifiers: A is the host, B the guest commentator.
const (
	SpeakerHost  = "A"
	SpeakerGuest = "B"
)

// Line is one utterance in a dialogue script.
type Line struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Script is an ordered dialogue.
type Script []Line

// Text joins the script into plain narration, one line per utterance.
func (s Script) Text() string {
	var b strings.Builder
	for i, line := range s {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.Text)
	}
	return b.String()
}

// CharCount returns the total rune count of the spoken text.
func (s Script) CharCount() int {
	total := 0
	for _, line := range s {
		total += len([]rune(line.Text))
	}
	return total
}

// normalize drops empty lines and coerces unknown speakers to the host.
func (s Script) normalize() Script {
	out := make(Script, 0, len(s))
	for _, line := range s {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		speaker := strings.TrimSpace(line.Speaker)
		if speaker != SpeakerHost && speaker != SpeakerGuest {
			speaker = SpeakerHost
		}
		out = append(out, Line{Speaker: speaker, Text: text})
	}
	return out
}
