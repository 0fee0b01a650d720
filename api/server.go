package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const viewerIDsField = "viewerIDs"

// ErrNilSessionManager is returned when registering without a manager.
var ErrNilSessionManager = errors.New("session manager is nil")

type Server struct {
	sessionManager i.SessionManager

	UnimplementedSessionServer
}

func RegisterNewSessionManager(sr grpc.ServiceRegistrar, sm i.SessionManager) error {
	if sm == nil {
		return ErrNilSessionManager
	}
	RegisterSessionServer(sr, &Server{sessionManager: sm})
	return nil
}

func (s *Server) NewSession(ctx context.Context, r *structpb.Struct) (*wrapperspb.StringValue, error) {
	list := r.GetFields()[viewerIDsField].GetListValue()
	if list == nil {
		return nil, status.Errorf(codes.InvalidArgument, "missing %s list", viewerIDsField)
	}

	parsedIDs := make([]uuid.UUID, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		id, err := uuid.Parse(v.GetStringValue())
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "parsing viewerID %q: %s", v.GetStringValue(), err)
		}
		parsedIDs = append(parsedIDs, id)
	}

	sessionID, err := s.sessionManager.NewSession(parsedIDs)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(sessionID.String()), nil
}

func (s *Server) SessionInfo(ctx context.Context, r *wrapperspb.StringValue) (*structpb.Struct, error) {
	parsedID, err := uuid.Parse(r.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "parsing viewerID: %s", err)
	}

	pubKey, serverAddr, err := s.sessionManager.SessionInfo(parsedID)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"serverPubKey": string(pubKey),
		"serverAddr":   serverAddr,
	})
}

func (s *Server) Snapshot(ctx context.Context, r *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	parsedID, err := uuid.Parse(r.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "parsing sessionID: %s", err)
	}

	snapshot, err := s.sessionManager.Snapshot(parsedID)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(snapshot), nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrNoSession):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrNoViewers), errors.Is(err, service.ErrTooManyViewers):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, fmt.Sprintf("session manager: %s", err))
}
