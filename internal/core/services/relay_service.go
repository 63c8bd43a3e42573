package services

import (
	"context"

	"beamcast/internal/core/domain"
	"beamcast/internal/core/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Drop reasons recorded by the metrics collector.
const (
	DropUnjoined      = "unjoined"
	DropRoomGone      = "room_gone"
	DropNoBroadcaster = "no_broadcaster"
	DropNoViewer      = "no_viewer"
)

type relayService struct {
	rooms   ports.RoomStore
	metrics ports.Metrics
	logger  *zap.SugaredLogger
}

// NewRelayService builds the message router over the given room store.
func NewRelayService(rooms ports.RoomStore, metrics ports.Metrics, logger *zap.SugaredLogger) ports.RelayService {
	return &relayService{
		rooms:   rooms,
		metrics: metrics,
		logger:  logger,
	}
}

// Join implements the join protocol. A second join as broadcaster
// silently replaces the previous broadcaster reference without
// notifying the replaced connection; that matches the reference
// behavior (reconnect-replace) and is deliberate.
func (s *relayService) Join(ctx context.Context, sess *domain.Session, ep domain.Endpoint, env domain.Envelope) {
	if sess.State != domain.StateUnjoined {
		s.logger.Warnw("join ignored, session already registered",
			"room", sess.Room,
			"role", sess.Role,
			"state", sess.State.String(),
		)
		return
	}

	role := domain.Role(env.Role)
	if env.Room == "" || (role != domain.RoleBroadcaster && role != domain.RoleViewer) {
		s.send(ep, domain.NewError("Room and role required"))
		return
	}

	roomID := domain.RoomID(env.Room)

	switch role {
	case domain.RoleBroadcaster:
		room := s.register(ctx, roomID, func(r *domain.Room) bool {
			return r.SetBroadcaster(ep)
		})
		if err := sess.Join(roomID, domain.RoleBroadcaster, domain.BroadcasterID); err != nil {
			s.logger.Errorw("broadcaster join transition failed", "room", roomID, "error", err)
			return
		}

		s.send(ep, domain.NewJoined(domain.RoleBroadcaster, roomID))
		for id, viewer := range room.Viewers() {
			if err := viewer.Send(domain.NewBroadcasterStatus(true)); err != nil {
				// Partial delivery failure must not abort the fan-out.
				s.logger.Warnw("broadcaster-status notify failed", "room", roomID, "viewer_id", id, "error", err)
			}
		}

		s.logger.Infow("broadcaster joined", "room", roomID, "viewers", room.ViewerCount())

	case domain.RoleViewer:
		viewerID := domain.ClientID(uuid.NewString())
		room := s.register(ctx, roomID, func(r *domain.Room) bool {
			return r.AddViewer(viewerID, ep)
		})
		if err := sess.Join(roomID, domain.RoleViewer, viewerID); err != nil {
			s.logger.Errorw("viewer join transition failed", "room", roomID, "error", err)
			return
		}

		s.send(ep, domain.NewRegistered(viewerID, roomID))
		if broadcaster, ok := room.Broadcaster(); ok {
			s.send(broadcaster, domain.NewViewerJoined(viewerID))
			s.send(ep, domain.NewBroadcasterStatus(true))
		} else {
			s.send(ep, domain.NewBroadcasterStatus(false))
		}

		s.logger.Infow("viewer joined", "room", roomID, "viewer_id", viewerID)
	}

	s.metrics.JoinRecorded(role)
	s.metrics.SetRooms(s.rooms.Count(ctx))
}

// register resolves the room and applies the registration under the
// room lock. If the room was torn down between resolution and
// registration it resolves a fresh one and retries.
func (s *relayService) register(ctx context.Context, id domain.RoomID, add func(*domain.Room) bool) *domain.Room {
	for {
		room := s.rooms.GetOrCreate(ctx, id)
		if add(room) {
			return room
		}
	}
}

func (s *relayService) Signal(ctx context.Context, sess *domain.Session, env domain.Envelope) {
	if !sess.Joined() {
		s.metrics.EnvelopeDropped(DropUnjoined)
		return
	}

	room, ok := s.rooms.Get(ctx, sess.Room)
	if !ok {
		s.metrics.EnvelopeDropped(DropRoomGone)
		return
	}

	switch sess.Role {
	case domain.RoleViewer:
		broadcaster, ok := room.Broadcaster()
		if !ok {
			s.metrics.EnvelopeDropped(DropNoBroadcaster)
			return
		}
		s.send(broadcaster, domain.NewSignal(sess.ClientID, env.Payload))
		s.metrics.EnvelopeRelayed("viewer_to_broadcaster", len(env.Payload))

	case domain.RoleBroadcaster:
		target := domain.ClientID(env.To)
		viewer, ok := room.Viewer(target)
		if !ok {
			s.metrics.EnvelopeDropped(DropNoViewer)
			return
		}
		s.send(viewer, domain.NewSignal(target, env.Payload))
		s.metrics.EnvelopeRelayed("broadcaster_to_viewer", len(env.Payload))
	}
}

func (s *relayService) Disconnect(ctx context.Context, sess *domain.Session) {
	if !sess.Joined() {
		sess.Close()
		return
	}

	room, ok := s.rooms.Get(ctx, sess.Room)
	if ok {
		switch sess.Role {
		case domain.RoleBroadcaster:
			room.ClearBroadcaster()
			for id, viewer := range room.Viewers() {
				if err := viewer.Send(domain.NewBroadcasterStatus(false)); err != nil {
					s.logger.Warnw("broadcaster-status notify failed", "room", sess.Room, "viewer_id", id, "error", err)
				}
			}
			s.logger.Infow("broadcaster left", "room", sess.Room)

		case domain.RoleViewer:
			if room.RemoveViewer(sess.ClientID) {
				if broadcaster, ok := room.Broadcaster(); ok {
					s.send(broadcaster, domain.NewViewerLeft(sess.ClientID))
				}
			}
			s.logger.Infow("viewer left", "room", sess.Room, "viewer_id", sess.ClientID)
		}

		s.rooms.RemoveIfEmpty(ctx, sess.Room)
	}

	sess.Close()
	s.metrics.SetRooms(s.rooms.Count(ctx))
}

// send pushes an envelope to one endpoint, fire-and-forget. Failures
// are logged; nothing on this path is fatal.
func (s *relayService) send(ep domain.Endpoint, env interface{}) {
	if err := ep.Send(env); err != nil {
		s.logger.Warnw("send failed", "error", err)
	}
}
