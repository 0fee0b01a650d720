package api

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakeSessionManager struct {
	viewers   []uuid.UUID
	sessionID uuid.UUID
	newErr    error
	known     uuid.UUID
}

func (f *fakeSessionManager) NewSession(ids []uuid.UUID) (uuid.UUID, error) {
	f.viewers = ids
	return f.sessionID, f.newErr
}

func (f *fakeSessionManager) StopAll() {}

func (f *fakeSessionManager) SessionInfo(id uuid.UUID) ([]byte, string, error) {
	if id != f.known {
		return nil, "", service.ErrNoSession
	}
	return []byte("key"), "10.0.0.1:4000", nil
}

func (f *fakeSessionManager) Snapshot(id uuid.UUID) ([]byte, error) {
	if id != f.sessionID {
		return nil, service.ErrNoSession
	}
	return []byte{0x08, 0x01}, nil
}

func viewerList(t *testing.T, ids ...string) *structpb.Struct {
	t.Helper()
	vals := make([]any, len(ids))
	for n, id := range ids {
		vals[n] = id
	}
	s, err := structpb.NewStruct(map[string]any{viewerIDsField: vals})
	require.NoError(t, err)
	return s
}

func TestRegisterRejectsNilManager(t *testing.T) {
	assert.ErrorIs(t, RegisterNewSessionManager(grpc.NewServer(), nil), ErrNilSessionManager)
}

func TestServerNewSession(t *testing.T) {
	fake := &fakeSessionManager{sessionID: uuid.New()}
	s := &Server{sessionManager: fake}
	viewer := uuid.New()

	got, err := s.NewSession(context.Background(), viewerList(t, viewer.String()))
	require.NoError(t, err)
	assert.Equal(t, fake.sessionID.String(), got.GetValue())
	assert.Equal(t, []uuid.UUID{viewer}, fake.viewers)

	tests := []struct {
		name string
		req  *structpb.Struct
		err  error
		want codes.Code
	}{
		{name: "missing list", req: &structpb.Struct{}, want: codes.InvalidArgument},
		{name: "bad uuid", req: viewerList(t, "not-a-uuid"), want: codes.InvalidArgument},
		{name: "no viewers", req: viewerList(t), err: service.ErrNoViewers, want: codes.InvalidArgument},
		{name: "too many", req: viewerList(t, viewer.String()), err: service.ErrTooManyViewers, want: codes.InvalidArgument},
		{name: "internal", req: viewerList(t, viewer.String()), err: errors.New("boom"), want: codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake.newErr = tt.err
			_, err := s.NewSession(context.Background(), tt.req)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestServerSessionInfo(t *testing.T) {
	fake := &fakeSessionManager{known: uuid.New()}
	s := &Server{sessionManager: fake}

	got, err := s.SessionInfo(context.Background(), wrapperspb.String(fake.known.String()))
	require.NoError(t, err)
	assert.Equal(t, "key", got.GetFields()["serverPubKey"].GetStringValue())
	assert.Equal(t, "10.0.0.1:4000", got.GetFields()["serverAddr"].GetStringValue())

	_, err = s.SessionInfo(context.Background(), wrapperspb.String(uuid.NewString()))
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = s.SessionInfo(context.Background(), wrapperspb.String("nope"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSessionServiceOverGRPC(t *testing.T) {
	lis := bufconn.Listen(1 << 16)
	srv := grpc.NewServer()
	fake := &fakeSessionManager{sessionID: uuid.New()}
	require.NoError(t, RegisterNewSessionManager(srv, fake))
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()
	client := NewSessionClient(conn)
	ctx := context.Background()

	id, err := client.NewSession(ctx, viewerList(t, uuid.NewString(), uuid.NewString()))
	require.NoError(t, err)
	assert.Equal(t, fake.sessionID.String(), id.GetValue())
	assert.Len(t, fake.viewers, 2)

	snap, err := client.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0x01}, snap.GetValue())

	_, err = client.Snapshot(ctx, wrapperspb.String(uuid.NewString()))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.SessionInfo(ctx, wrapperspb.String(uuid.NewString()))
	assert.Equal(t, codes.NotFound, status.Code(err))
}
