package domain

type SessionState int

const (
	StateUnjoined SessionState = iota
	StateJoined
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateUnjoined:
		return "unjoined"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the per-connection role state machine:
// unjoined -> joined(role) -> closed. Exactly one join transition is
// permitted per connection. A Session is owned by a single connection
// handler goroutine and needs no internal locking.
type Session struct {
	State    SessionState
	Room     RoomID
	Role     Role
	ClientID ClientID
}

func NewSession() *Session {
	return &Session{State: StateUnjoined}
}

// Join transitions the session into the joined state. It fails with
// ErrAlreadyJoined unless the session is unjoined.
func (s *Session) Join(room RoomID, role Role, id ClientID) error {
	if s.State != StateUnjoined {
		return ErrAlreadyJoined
	}

	s.State = StateJoined
	s.Room = room
	s.Role = role
	s.ClientID = id
	return nil
}

func (s *Session) Joined() bool {
	return s.State == StateJoined
}

func (s *Session) Close() {
	s.State = StateClosed
}
