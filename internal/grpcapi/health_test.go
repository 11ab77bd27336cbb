package grpcapi_test

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/champions-academy/clubgate/internal/grpcapi"
)

type switchPinger struct{ down atomic.Bool }

func (p *switchPinger) PingContext(context.Context) error {
	if p.down.Load() {
		return errors.New("db down")
	}
	return nil
}

func startServer(t *testing.T) (*grpcapi.Server, healthpb.HealthClient, context.CancelFunc) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpcapi.NewServerWithListener(lis, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return srv, healthpb.NewHealthClient(conn), cancel
}

func check(t *testing.T, c healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_StartsNotServing(t *testing.T) {
	_, client, _ := startServer(t)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, grpcapi.AccessServiceName))
}

func TestHealth_SetServing(t *testing.T) {
	srv, client, _ := startServer(t)

	srv.SetServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, grpcapi.AccessServiceName))
}

func TestHealth_WatchDB(t *testing.T) {
	srv, client, _ := startServer(t)
	srv.SetServing(true)

	db := &switchPinger{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.WatchDB(ctx, db, 10*time.Millisecond)

	db.down.Store(true)
	assert.Eventually(t, func() bool {
		return check(t, client, grpcapi.AccessServiceName) == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))

	db.down.Store(false)
	assert.Eventually(t, func() bool {
		return check(t, client, grpcapi.AccessServiceName) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)
}
