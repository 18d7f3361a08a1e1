package core

// Frame is a raw JSON payload ready for the wire.
type Frame []byte

// SignalConnection abstracts the send side of one live socket.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
