package domain

import "time"

// Intent is the single classified purpose of an inbound message. It drives
// which enrichment source (if any) is consulted before generation.
type Intent string

const (
	IntentNews    Intent = "news"
	IntentWeather Intent = "weather"
	IntentTime    Intent = "time"
	IntentNone    Intent = "none"
)

// InboundMessage is one user message as received by a channel. It is created
// by the transport, consumed once by the responder, and discarded.
type InboundMessage struct {
	Channel    string
	From       string
	Body       string
	ReceivedAt time.Time
}

// Reply is the generated answer handed back to the channel. Text carries the
// raw generator output (French answer plus English gloss) verbatim; the
// pipeline never parses it. AudioURL is set only when a spoken version was
// synthesized and hosted.
type Reply struct {
	Text             string
	AudioURL         string
	AudioContentType string
}
