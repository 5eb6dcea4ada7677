package pipeline

// Kind classifies one pipeline message. Progress markers keep their literal
// "STAGED:" text so existing chat clients can key on them; everything else is
// terminal and ends the run's message stream.
type Kind string

const (
	KindProgress Kind = "progress"
	KindFinal    Kind = "final"

	KindInsufficientInput   Kind = "insufficient_input"
	KindCollaboratorFailure Kind = "collaborator_failure"
	KindNoCandidates        Kind = "no_candidates"
	KindStorageFailure      Kind = "storage_failure"
	KindInternalError       Kind = "internal_error"
)

// Message is one entry of a run's ordered output stream.
type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Progress builds a non-terminal stage marker.
func Progress(text string) Message {
	return Message{Kind: KindProgress, Text: text}
}

// Terminal reports whether the message ends the stream.
func (m Message) Terminal() bool {
	return m.Kind != KindProgress
}

// Failed reports whether the message is a terminal failure.
func (m Message) Failed() bool {
	return m.Terminal() && m.Kind != KindFinal
}
