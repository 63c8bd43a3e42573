package domain

import "encoding/json"

// Envelope type tags exchanged over the wire.
const (
	EnvJoin              = "join"
	EnvSignal            = "signal"
	EnvPong              = "pong"
	EnvJoined            = "joined"
	EnvRegistered        = "registered"
	EnvBroadcasterStatus = "broadcaster-status"
	EnvViewerJoined      = "viewer-joined"
	EnvViewerLeft        = "viewer-left"
	EnvError             = "error"
	EnvPing              = "ping"
)

// Envelope is the inbound client message. Payload carries the opaque
// negotiation data (session description or ICE candidate); the server
// never parses it.
type Envelope struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	Role    string          `json:"role,omitempty"`
	To      string          `json:"to,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinedEnvelope struct {
	Type string `json:"type"`
	Role Role   `json:"role"`
	Room RoomID `json:"room"`
}

type RegisteredEnvelope struct {
	Type     string   `json:"type"`
	ClientID ClientID `json:"clientId"`
	Room     RoomID   `json:"room"`
}

type BroadcasterStatusEnvelope struct {
	Type   string `json:"type"`
	Online bool   `json:"online"`
}

type ViewerJoinedEnvelope struct {
	Type     string   `json:"type"`
	ViewerID ClientID `json:"viewerId"`
}

type ViewerLeftEnvelope struct {
	Type     string   `json:"type"`
	ViewerID ClientID `json:"viewerId"`
}

type SignalEnvelope struct {
	Type     string          `json:"type"`
	ViewerID ClientID        `json:"viewerId"`
	Payload  json.RawMessage `json:"payload"`
}

type ErrorEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PingEnvelope is the application-level liveness probe used when the
// transport has no native ping frame. The client echoes it back as a
// "pong" envelope.
type PingEnvelope struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func NewJoined(role Role, room RoomID) JoinedEnvelope {
	return JoinedEnvelope{Type: EnvJoined, Role: role, Room: room}
}

func NewRegistered(id ClientID, room RoomID) RegisteredEnvelope {
	return RegisteredEnvelope{Type: EnvRegistered, ClientID: id, Room: room}
}

func NewBroadcasterStatus(online bool) BroadcasterStatusEnvelope {
	return BroadcasterStatusEnvelope{Type: EnvBroadcasterStatus, Online: online}
}

func NewViewerJoined(id ClientID) ViewerJoinedEnvelope {
	return ViewerJoinedEnvelope{Type: EnvViewerJoined, ViewerID: id}
}

func NewViewerLeft(id ClientID) ViewerLeftEnvelope {
	return ViewerLeftEnvelope{Type: EnvViewerLeft, ViewerID: id}
}

func NewSignal(viewerID ClientID, payload json.RawMessage) SignalEnvelope {
	return SignalEnvelope{Type: EnvSignal, ViewerID: viewerID, Payload: payload}
}

func NewError(message string) ErrorEnvelope {
	return ErrorEnvelope{Type: EnvError, Message: message}
}

func NewPing(timestamp int64) PingEnvelope {
	return PingEnvelope{Type: EnvPing, Timestamp: timestamp}
}
