package grpcapi

import (
	"context"
	"io"
	"net"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/diamond-sim/internal/config"
	"github.com/xtding233/diamond-sim/internal/leaguetest"
	"github.com/xtding233/diamond-sim/internal/predictor"
	"github.com/xtding233/diamond-sim/internal/service"
	"github.com/xtding233/diamond-sim/internal/store"
)

func dialTestServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	dir := leaguetest.Write(t, t.TempDir(), "crabs", "tigers")
	set, _, err := predictor.LoadFile(filepath.Join(dir, "models.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "rpc.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	svc, err := service.New(service.Options{Loader: config.NewLoader(dir), Predictor: set, Store: st})
	if err != nil {
		t.Fatal(err)
	}

	lis := bufconn.Listen(1 << 20)
	grpcServer, _ := NewGRPCServer(NewServer(svc, log.New(io.Discard)))
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSimulateGameRoundTrip(t *testing.T) {
	conn := dialTestServer(t)
	client := NewClient(conn)
	in, err := structpb.NewStruct(map[string]any{
		"id":      "rpc-1",
		"season":  12,
		"home":    "crabs",
		"away":    "tigers",
		"weather": "sun2",
		"trials":  3,
		"seed":    42,
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := client.SimulateGame(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	m := out.AsMap()
	if m["game_id"] != "rpc-1" || m["home"] != "crabs" {
		t.Fatalf("unexpected outcome: %v", m)
	}
	trials, ok := m["trials"].([]any)
	if !ok || len(trials) != 3 {
		t.Fatalf("want 3 trials; got %v", m["trials"])
	}

	snap, err := client.GetSnapshot(context.Background(), &structpb.Struct{Fields: map[string]*structpb.Value{
		"game_id": structpb.NewStringValue("rpc-1"),
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.GetFields()) == 0 {
		t.Fatal("snapshot should not be empty")
	}
}

func TestSimulateGameErrorCodes(t *testing.T) {
	client := NewClient(dialTestServer(t))
	cases := []struct {
		name string
		in   map[string]any
		want codes.Code
	}{
		{"self play", map[string]any{"home": "crabs", "away": "crabs"}, codes.InvalidArgument},
		{"unknown team", map[string]any{"home": "crabs", "away": "moles"}, codes.NotFound},
		{"bad weather", map[string]any{"home": "crabs", "away": "tigers", "weather": "snow"}, codes.InvalidArgument},
		{"bad rules", map[string]any{"home": "crabs", "away": "tigers", "rules": map[string]any{"num_bases": 12}}, codes.InvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := structpb.NewStruct(tc.in)
			if err != nil {
				t.Fatal(err)
			}
			_, err = client.SimulateGame(context.Background(), in)
			if got := status.Code(err); got != tc.want {
				t.Fatalf("want %v; got %v (%v)", tc.want, got, err)
			}
		})
	}

	_, err := client.GetSnapshot(context.Background(), &structpb.Struct{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("missing game_id should be invalid; got %v", err)
	}
	_, err = client.GetSnapshot(context.Background(), &structpb.Struct{Fields: map[string]*structpb.Value{
		"game_id": structpb.NewStringValue("never-played"),
	}})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("unknown game should be not found; got %v", err)
	}
}

func TestHealthServing(t *testing.T) {
	conn := dialTestServer(t)
	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(),
		&grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatal(err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected health status: %v", resp.GetStatus())
	}
}
