package codec

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region mock
type mockClassifierService struct {
	resp *structpb.Struct
	err  error
	last *structpb.Struct
}

func (m *mockClassifierService) Classify(_ context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	m.last = in
	return m.resp, m.err
}

func scoresResponse(t *testing.T, scores map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(map[string]any{"scores": scores})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

// #endregion mock

// #region constructor-tests
func TestNewClassifierClientInvalidAddr(t *testing.T) {
	client, err := NewClassifierClient("localhost:0")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	defer client.Close()
}

func TestNewClassifierClientWithService(t *testing.T) {
	c := NewClassifierClientWithService(&mockClassifierService{})
	if c == nil || c.client == nil {
		t.Fatal("expected non-nil client")
	}
	if err := c.Close(); err != nil {
		t.Errorf("close without conn: %v", err)
	}
}

// #endregion constructor-tests

// #region classify-tests
func TestClassify_Success(t *testing.T) {
	mock := &mockClassifierService{resp: scoresResponse(t, map[string]any{
		"hungry":     0.6,
		"belly_pain": 0.3,
		"note":       "ignored",
	})}
	c := &ClassifierClient{client: mock}

	scores, err := c.Classify(context.Background(), []byte{1, 2, 3}, "audio/wav", "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 || scores["hungry"] != 0.6 {
		t.Errorf("unexpected scores: %v", scores)
	}

	fields := mock.last.GetFields()
	if fields["audio_b64"].GetStringValue() != base64.StdEncoding.EncodeToString([]byte{1, 2, 3}) {
		t.Errorf("unexpected audio payload: %v", fields["audio_b64"])
	}
	if fields["baby_id"].GetStringValue() != "b1" {
		t.Errorf("unexpected baby_id: %v", fields["baby_id"])
	}
}

func TestClassify_Error(t *testing.T) {
	mock := &mockClassifierService{err: errors.New("rpc failed")}
	c := &ClassifierClient{client: mock}

	_, err := c.Classify(context.Background(), nil, "audio/wav", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, mock.err) {
		t.Errorf("expected wrapped rpc error, got: %v", err)
	}
}

func TestClassify_NoScores(t *testing.T) {
	resp, _ := structpb.NewStruct(map[string]any{"label": "hunger"})
	c := &ClassifierClient{client: &mockClassifierService{resp: resp}}

	_, err := c.Classify(context.Background(), nil, "audio/wav", "")
	if !errors.Is(err, ErrNoScores) {
		t.Fatalf("expected ErrNoScores, got %v", err)
	}
}

// #endregion classify-tests

// #region bufconn-tests

type classifierServer interface {
	Classify(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type echoClassifier struct{}

func (echoClassifier) Classify(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	label := "hunger"
	if in.GetFields()["mime_type"].GetStringValue() == "audio/ogg" {
		label = "tired"
	}
	return structpb.NewStruct(map[string]any{"scores": map[string]any{label: 0.9}})
}

var classifierDesc = grpc.ServiceDesc{
	ServiceName: "babycare.classifier.v1.CryClassifier",
	HandlerType: (*classifierServer)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "Classify",
		Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			return srv.(classifierServer).Classify(ctx, in)
		},
	}},
}

func TestClassify_OverBufconn(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&classifierDesc, echoClassifier{})
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	c := NewClassifierClientWithService(NewClassifierService(conn))
	scores, err := c.Classify(context.Background(), []byte("clip"), "audio/ogg", "b1")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if scores["tired"] != 0.9 {
		t.Errorf("unexpected scores: %v", scores)
	}
}

// #endregion bufconn-tests
