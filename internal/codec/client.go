package codec

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// ClassifyMethod is the full gRPC method name of the audio classifier.
const ClassifyMethod = "/babycare.classifier.v1.CryClassifier/Classify"

// ErrNoScores is returned when the classifier response carries no scores object.
var ErrNoScores = errors.New("response has no scores")

// #region service
// ClassifierService is the RPC surface of the external cry classifier.
// Messages are google.protobuf.Struct on both sides.
type ClassifierService interface {
	Classify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type classifierService struct {
	cc grpc.ClientConnInterface
}

// NewClassifierService binds the classifier RPC to a connection.
func NewClassifierService(cc grpc.ClientConnInterface) ClassifierService {
	return &classifierService{cc: cc}
}

func (c *classifierService) Classify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ClassifyMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion service

// #region client-struct
// ClassifierClient wraps the gRPC connection to the audio classification service.
type ClassifierClient struct {
	conn   *grpc.ClientConn
	client ClassifierService
	retry  RetryPolicy
}

// #endregion client-struct

// #region constructor
// NewClassifierClient connects to the classifier gRPC server.
func NewClassifierClient(addr string) (*ClassifierClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &ClassifierClient{
		conn:   conn,
		client: NewClassifierService(conn),
		retry:  DefaultRetryPolicy(),
	}, nil
}

// NewClassifierClientWithService creates a ClassifierClient with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClassifierClientWithService(svc ClassifierService) *ClassifierClient {
	return &ClassifierClient{client: svc, retry: DefaultRetryPolicy()}
}

// WithRetry replaces the retry policy and returns c.
func (c *ClassifierClient) WithRetry(p RetryPolicy) *ClassifierClient {
	c.retry = p
	return c
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection, if the client owns one.
func (c *ClassifierClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region classify
// Classify sends one audio clip and returns the raw label -> probability map.
// Labels are returned as the classifier spells them; non-numeric values are dropped.
// Transient RPC failures are retried per the client's RetryPolicy.
func (c *ClassifierClient) Classify(ctx context.Context, audio []byte, mimeType, babyID string) (map[string]float64, error) {
	req, err := structpb.NewStruct(map[string]any{
		"audio_b64": base64.StdEncoding.EncodeToString(audio),
		"mime_type": mimeType,
		"baby_id":   babyID,
	})
	if err != nil {
		return nil, fmt.Errorf("build classify request: %w", err)
	}

	var attempts []Attempt
	for {
		resp, err := c.client.Classify(ctx, req)
		if err == nil {
			return ScoresFromStruct(resp)
		}
		attempts = append(attempts, Attempt{Err: err})
		if !c.retry.ShouldRetry(attempts) {
			return nil, fmt.Errorf("classify rpc (%d attempts): %w", len(attempts), err)
		}
		if werr := c.retry.wait(ctx, len(attempts)); werr != nil {
			return nil, fmt.Errorf("classify rpc (%d attempts): %w", len(attempts), err)
		}
	}
}

// ScoresFromStruct reads the "scores" object of a classifier response.
func ScoresFromStruct(resp *structpb.Struct) (map[string]float64, error) {
	scoresVal, ok := resp.GetFields()["scores"]
	if !ok || scoresVal.GetStructValue() == nil {
		return nil, fmt.Errorf("classify rpc: %w", ErrNoScores)
	}
	scores := make(map[string]float64, len(scoresVal.GetStructValue().GetFields()))
	for label, v := range scoresVal.GetStructValue().GetFields() {
		if n, ok := v.GetKind().(*structpb.Value_NumberValue); ok {
			scores[label] = n.NumberValue
		}
	}
	return scores, nil
}

// #endregion classify
