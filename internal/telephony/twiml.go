package telephony

import (
	"errors"
	"strings"

	"github.com/twilio/twilio-go/twiml"
)

// Instruction is a provider-agnostic audio action for a live call.
type Instruction struct {
	Action InstructionAction `json:"action"`

	// URL is used when Action == "play".
	URL string `json:"url,omitempty"`
	// Text is used when Action == "say".
	Text string `json:"text,omitempty"`
}

type InstructionAction string

const (
	InstructionPlay   InstructionAction = "play"
	InstructionSay    InstructionAction = "say"
	InstructionHangup InstructionAction = "hangup"
)

func Play(url string) Instruction { return Instruction{Action: InstructionPlay, URL: url} }

func Say(text string) Instruction { return Instruction{Action: InstructionSay, Text: text} }

// EmptyTwiML is a harmless document returned when rendering fails.
const EmptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// RenderTwiML maps instructions to a TwiML voice response.
func RenderTwiML(ins ...Instruction) (string, error) {
	verbs := make([]twiml.Element, 0, len(ins))
	for _, in := range ins {
		switch in.Action {
		case InstructionPlay:
			if strings.TrimSpace(in.URL) == "" {
				return "", errors.New("telephony: url required for play instruction")
			}
			verbs = append(verbs, &twiml.VoicePlay{Url: in.URL})
		case InstructionSay:
			if strings.TrimSpace(in.Text) == "" {
				return "", errors.New("telephony: text required for say instruction")
			}
			verbs = append(verbs, &twiml.VoiceSay{Message: in.Text})
		case InstructionHangup:
			verbs = append(verbs, &twiml.VoiceHangup{})
		default:
			return "", errors.New("telephony: unknown instruction action")
		}
	}
	return twiml.Voice(verbs)
}
