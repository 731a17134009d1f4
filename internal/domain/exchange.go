package domain

import "time"

// Exchange is the audit record of one completed request/reply pair. It is
// written after the reply is formed and never read back into the pipeline.
type Exchange struct {
	ID        int64
	Channel   string
	From      string
	Question  string
	Intent    Intent
	Summary   string
	Reply     string
	AudioURL  string
	CreatedAt time.Time
}
