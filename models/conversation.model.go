package models

// Sender identifies who authored a conversation turn
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ConversationTurn is one message of the verification chat. Turns are displayed in insertion order.
type ConversationTurn struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// ConversationSession is the client view of a server-tracked verification dialogue
type ConversationSession struct {
	ConversationID *string            `json:"conversation_id"`
	Transcript     []ConversationTurn `json:"transcript"`
}
