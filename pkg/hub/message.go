// Package hub provides a websocket broadcast hub for soul frames,
// using a channel-based fan-out loop.
package hub

// MessageType selects the websocket frame opcode.
type MessageType int

const (
	// TextMessage is a JSON-encoded message
	TextMessage MessageType = iota
	// BinaryMessage is an encoded point frame
	BinaryMessage
)

// Message is queued for every connected client.
type Message struct {
	Type MessageType
	Data []byte
}

// NewTextMessage wraps pre-encoded JSON.
func NewTextMessage(data []byte) Message {
	return Message{Type: TextMessage, Data: data}
}

// NewBinaryMessage wraps an encoded frame.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
