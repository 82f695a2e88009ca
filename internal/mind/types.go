package mind

// Entry is one remembered message with its weight.
type Entry struct {
	Message string `json:"message"`
	Weight  int    `json:"weight"`
}

// Histories is the persisted shape of the whole memory: group id -> message -> weight.
type Histories = map[int64]map[string]int

// Message is an inbound group message as delivered by a transport.
type Message struct {
	GroupID  int64
	SenderID int64
	Text     string
	FromBot  bool
}

// ReplyKind tells how a reply was selected.
type ReplyKind string

const (
	ReplyMatched ReplyKind = "matched"
	ReplyRandom  ReplyKind = "random"
)

// Decision is the text chosen as a reply and how it was chosen.
type Decision struct {
	Text string    `json:"text"`
	Kind ReplyKind `json:"kind"`
}

// Outcome is the terminal state of one inbound message.
type Outcome int

const (
	OutcomeIgnored   Outcome = iota // filtered out, nothing stored
	OutcomeRecorded                 // stored, no reply
	OutcomeScheduled                // stored and a reply is on its way
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRecorded:
		return "recorded"
	case OutcomeScheduled:
		return "scheduled"
	default:
		return "unknown"
	}
}
