package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/baby"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/codec"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/eval"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/event"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/ladder"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/store"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// #region helpers
type fakeClassifier struct {
	scores map[string]float64
	err    error
}

func (f fakeClassifier) Classify(context.Context, []byte, string, string) (map[string]float64, error) {
	return f.scores, f.err
}

func setup(t *testing.T, classifier Classifier) (*Server, *store.Store, string) {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	p, err := st.UpsertBaby(baby.Profile{Name: "Ada", Maturity: baby.FullTerm})
	if err != nil {
		t.Fatalf("UpsertBaby: %v", err)
	}
	_, err = st.AddEvent(p.ID, event.New(event.Feeding, map[string]any{
		"timestamp": now.Add(-20 * time.Minute).Format(time.RFC3339),
		"amount":    90,
	}))
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	srv := New(st, adjust.New(adjust.DefaultConfig()), eval.NewEvalHarness(eval.DefaultEvalConfig()), classifier, nil, DefaultOptions())
	srv.clock = func() time.Time { return now }
	return srv, st, p.ID
}

func dial(t *testing.T, srv *Server) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	Register(gs, srv)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

func codeOf(err error) codes.Code {
	return status.Code(errors.Unwrap(err))
}

// #endregion helpers

// #region handle-tests
func TestHandle_RawScores(t *testing.T) {
	srv, st, babyID := setup(t, nil)

	resp, err := srv.Handle(context.Background(), Request{
		BabyID:    babyID,
		RawScores: map[string]float64{"hunger": 0.3, "belly_pain": 0.5, "tired": 0.2},
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Output.FinalLabel != cause.Burping {
		t.Errorf("expected burping, got %s", resp.Output.FinalLabel)
	}
	if !resp.Eval.Passed {
		t.Errorf("expected eval pass: %s", resp.Eval.Reason)
	}

	row, err := st.GetAdjustment(resp.AdjustmentID)
	if err != nil {
		t.Fatalf("GetAdjustment: %v", err)
	}
	if row.BabyID != babyID || row.Rules != string(ladder.RulePostFeedBurp) {
		t.Errorf("unexpected log row: %+v", row)
	}
}

func TestHandle_Classifier(t *testing.T) {
	srv, _, babyID := setup(t, fakeClassifier{scores: map[string]float64{"sleepy": 0.9, "hungry": 0.1}})

	resp, err := srv.Handle(context.Background(), Request{BabyID: babyID, AudioB64: "AAEC", MimeType: "audio/wav"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Output.RawScores.Get(cause.Tired) != 0.9 {
		t.Errorf("expected classifier scores used, got %v", resp.Output.RawScores)
	}
}

func TestHandle_Errors(t *testing.T) {
	srv, _, babyID := setup(t, nil)
	failing, _, failingBaby := setup(t, fakeClassifier{err: errors.New("down")})

	tests := []struct {
		name string
		srv  *Server
		req  Request
		want codes.Code
	}{
		{"missing baby", srv, Request{RawScores: map[string]float64{"hunger": 1}}, codes.InvalidArgument},
		{"unknown baby", srv, Request{BabyID: "ghost", RawScores: map[string]float64{"hunger": 1}}, codes.NotFound},
		{"bad now", srv, Request{BabyID: babyID, Now: "yesterday", RawScores: map[string]float64{"hunger": 1}}, codes.InvalidArgument},
		{"no scores", srv, Request{BabyID: babyID}, codes.InvalidArgument},
		{"no classifier", srv, Request{BabyID: babyID, AudioB64: "AAEC"}, codes.FailedPrecondition},
		{"classifier down", failing, Request{BabyID: failingBaby, AudioB64: "AAEC"}, codes.Unavailable},
	}
	for _, tt := range tests {
		_, err := tt.srv.Handle(context.Background(), tt.req)
		if got := status.Code(err); got != tt.want {
			t.Errorf("%s: expected %s, got %s (%v)", tt.name, tt.want, got, err)
		}
	}
}

func TestHandle_ClassifierErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"rejected clip", status.Error(codes.InvalidArgument, "clip too short"), codes.InvalidArgument},
		{"wrapped after retries", fmt.Errorf("classify rpc (3 attempts): %w", status.Error(codes.ResourceExhausted, "busy")), codes.ResourceExhausted},
		{"no scores in reply", fmt.Errorf("classify rpc: %w", codec.ErrNoScores), codes.Internal},
		{"connection refused", errors.New("dial tcp: connection refused"), codes.Unavailable},
	}
	for _, tt := range tests {
		srv, _, babyID := setup(t, fakeClassifier{err: tt.err})
		_, err := srv.Handle(context.Background(), Request{BabyID: babyID, AudioB64: "AAEC"})
		if got := status.Code(err); got != tt.want {
			t.Errorf("%s: expected %s, got %s (%v)", tt.name, tt.want, got, err)
		}
	}
}

// #endregion handle-tests

// #region grpc-tests
func TestAdjust_OverBufconn(t *testing.T) {
	srv, _, babyID := setup(t, nil)
	client := dial(t, srv)

	resp, err := client.Adjust(context.Background(), Request{
		BabyID:    babyID,
		RawScores: map[string]float64{"hunger": 0.3, "belly_pain": 0.5, "tired": 0.2},
		Now:       now.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if resp.AdjustmentID == "" {
		t.Error("expected adjustment id")
	}
	if resp.Output.FinalLabel != cause.Burping {
		t.Errorf("expected burping, got %s", resp.Output.FinalLabel)
	}
	if len(resp.Output.Explanation) != 1 {
		t.Errorf("expected one explanation line, got %v", resp.Output.Explanation)
	}
}

func TestAdjust_StatusOverBufconn(t *testing.T) {
	srv, _, _ := setup(t, nil)
	client := dial(t, srv)

	_, err := client.Adjust(context.Background(), Request{BabyID: "ghost", RawScores: map[string]float64{"hunger": 1}})
	if codeOf(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

// #endregion grpc-tests
