package core

// Role identifies the conversational origin of a Message.
type Role string

const (
	// RoleSystem marks instructions injected by the orchestration layer.
	RoleSystem Role = "system"
	// RoleUser marks caller supplied input.
	RoleUser Role = "user"
	// RoleAssistant marks agent produced replies.
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged text entry in a conversation. Author is
// optional and names the agent that produced an assistant message.
type Message struct {
	Role   Role   `json:"role"`
	Author string `json:"author,omitempty"`
	Text   string `json:"text"`
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Text: text}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// NewAssistantMessage creates an assistant-role message authored by the
// named agent.
func NewAssistantMessage(author, text string) Message {
	return Message{Role: RoleAssistant, Author: author, Text: text}
}

// Kind discriminates the closed set of payloads routed between executors.
// Handler registration and build-time edge compatibility checks key on it.
type Kind int

const (
	// KindSubmission is the typed caller input delivered to the start node.
	KindSubmission Kind = iota
	// KindEnvelope is a conversation snapshot travelling an edge.
	KindEnvelope
	// KindTurnSignal tells an agent node the conversation is ready for a
	// response.
	KindTurnSignal
	// KindInputResponse resumes a paused run with an externally supplied
	// value.
	KindInputResponse
)

// String returns a stable label for logging and event summaries.
func (k Kind) String() string {
	switch k {
	case KindSubmission:
		return "submission"
	case KindEnvelope:
		return "envelope"
	case KindTurnSignal:
		return "turn-signal"
	case KindInputResponse:
		return "input-response"
	default:
		return "unknown"
	}
}

// Payload is the closed sum of values an executor can receive or send.
// Concrete payloads report their discriminant via Kind.
type Payload interface{ PayloadKind() Kind }

// Submission wraps the caller's typed request on its way to the start node.
// Value is either a domain request (any shape the input adapter understands),
// a raw Message, or a raw []Message conversation.
type Submission struct {
	Value any
}

// PayloadKind implements Payload.
func (Submission) PayloadKind() Kind { return KindSubmission }

// Envelope is the generic conversation unit exchanged between executors: an
// ordered, append-only sequence of messages plus a flag marking the sending
// node's turn as complete.
type Envelope struct {
	Conversation []Message `json:"conversation"`
	TurnComplete bool      `json:"turn_complete"`
}

// PayloadKind implements Payload.
func (Envelope) PayloadKind() Kind { return KindEnvelope }

// Append returns a new Envelope extending the conversation with msgs. The
// receiver is never mutated; conversation order is append-only within a run.
func (e Envelope) Append(msgs ...Message) Envelope {
	conv := make([]Message, 0, len(e.Conversation)+len(msgs))
	conv = append(conv, e.Conversation...)
	conv = append(conv, msgs...)
	return Envelope{Conversation: conv, TurnComplete: e.TurnComplete}
}

// Clone returns a deep copy safe for independent mutation.
func (e Envelope) Clone() Envelope {
	conv := make([]Message, len(e.Conversation))
	copy(conv, e.Conversation)
	return Envelope{Conversation: conv, TurnComplete: e.TurnComplete}
}

// LastAssistant returns the most recent assistant-authored message, scanning
// from the end of the conversation. ok is false when no agent has replied yet.
func (e Envelope) LastAssistant() (Message, bool) {
	for i := len(e.Conversation) - 1; i >= 0; i-- {
		if e.Conversation[i].Role == RoleAssistant {
			return e.Conversation[i], true
		}
	}
	return Message{}, false
}

// LastUserText returns the text of the most recent user message, or "".
func (e Envelope) LastUserText() string {
	for i := len(e.Conversation) - 1; i >= 0; i-- {
		if e.Conversation[i].Role == RoleUser {
			return e.Conversation[i].Text
		}
	}
	return ""
}

// TurnSignal is the explicit marker sent after a content envelope telling the
// downstream node that the conversation is complete and ready for a response.
// Nodes that do not register a handler for it simply drop it.
type TurnSignal struct{}

// PayloadKind implements Payload.
func (TurnSignal) PayloadKind() Kind { return KindTurnSignal }

// InputResponse carries the externally supplied value that resumes a run
// paused on a matching input request.
type InputResponse struct {
	RequestID string `json:"request_id"`
	Value     string `json:"value"`
}

// PayloadKind implements Payload.
func (InputResponse) PayloadKind() Kind { return KindInputResponse }
