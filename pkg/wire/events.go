package wire

import "encoding/json"

// Event names carried in the envelope. Inbound and outbound share one
// namespace; the gate only dispatches the inbound subset.
const (
	// inbound
	EventMove     = "move"
	EventSpectate = "spectate"

	// outbound
	EventWaiting              = "waiting"
	EventSeatAssigned         = "seat_assigned"
	EventMoveAccepted         = "move_accepted"
	EventPositionSnapshot     = "position_snapshot"
	EventMoveRejected         = "move_rejected"
	EventOpponentDisconnected = "opponent_disconnected"
)

// Envelope is the single frame format on the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Wrap marshals the payload into an Envelope. Marshal failures on the
// outbound structs below cannot happen; the error is still surfaced for the
// inbound-building callers.
func Wrap(event string, payload any) (Envelope, error) {
	if payload == nil {
		return Envelope{Event: event}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}

// MoveRequest is the inbound move proposal.
type MoveRequest struct {
	SessionID string `json:"session_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// SpectateRequest asks to observe a running session.
type SpectateRequest struct {
	SessionID string `json:"session_id"`
}

// Waiting is sent once to a freshly queued connection.
type Waiting struct {
	Message string `json:"message,omitempty"`
}

// SeatAssigned is sent to each player when a session starts.
type SeatAssigned struct {
	Color     string `json:"color"`
	SessionID string `json:"session_id"`
	Message   string `json:"message,omitempty"`
}

// MoveAccepted is broadcast to the whole room after a legal move.
type MoveAccepted struct {
	SessionID string `json:"session_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	SAN       string `json:"san"`
	UCI       string `json:"uci"`
}

// PositionSnapshot is a full-replace encoding of the board. The FEN carries
// placement, side to move, castling rights and en passant state, so a client
// can resume rendering and move entry from it alone.
type PositionSnapshot struct {
	SessionID string `json:"session_id"`
	FEN       string `json:"fen"`
	Turn      string `json:"turn"`
	Outcome   string `json:"outcome,omitempty"`
}

// MoveRejected goes back to the submitter only, echoing the proposal.
type MoveRejected struct {
	SessionID string `json:"session_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	Message   string `json:"message,omitempty"`
}

// OpponentDisconnected is sent to the surviving seated connection.
type OpponentDisconnected struct {
	Message string `json:"message,omitempty"`
}
