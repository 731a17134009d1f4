package channel

import (
	"encoding/xml"
	"fmt"

	"langingo/internal/domain"
)

// twimlResponse is the Twilio messaging reply envelope.
type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Message twimlMessage `xml:"Message"`
}

type twimlMessage struct {
	Body  string   `xml:"Body"`
	Media []string `xml:"Media,omitempty"`
}

// renderTwiML wraps a reply into the TwiML envelope. The reply text becomes
// a single message unit; a Media element is added only when attachAudio is
// set and the reply actually carries a hosted URL.
func renderTwiML(reply domain.Reply, attachAudio bool) ([]byte, error) {
	env := twimlResponse{Message: twimlMessage{Body: reply.Text}}
	if attachAudio && reply.AudioURL != "" {
		env.Message.Media = []string{reply.AudioURL}
	}

	out, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal twiml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
