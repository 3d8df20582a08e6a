// Package server exposes the adjustment engine over gRPC. It loads the
// caregiving snapshot from the store, optionally asks the external classifier
// for raw scores, runs the engine and records provenance.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/codec"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/eval"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/logging"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/store"
)

// #region types
// Request is the JSON shape of an Adjust call.
type Request struct {
	BabyID    string             `json:"baby_id"`
	RawScores map[string]float64 `json:"raw_scores,omitempty"`
	Now       string             `json:"now,omitempty"` // RFC3339; server clock when empty
	AudioB64  string             `json:"audio_b64,omitempty"`
	MimeType  string             `json:"mime_type,omitempty"`
}

// Response is the JSON shape of an Adjust reply.
type Response struct {
	AdjustmentID string          `json:"adjustment_id"`
	Output       adjust.Output   `json:"output"`
	Eval         eval.EvalResult `json:"eval"`
}

// Classifier produces raw scores from an audio clip.
type Classifier interface {
	Classify(ctx context.Context, audio []byte, mimeType, babyID string) (map[string]float64, error)
}

// Options tunes request handling.
type Options struct {
	Timeout  time.Duration // per-request budget for store and classifier calls
	Lookback time.Duration // feeding/sleep history loaded per request
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:  5 * time.Second,
		Lookback: 24 * time.Hour,
	}
}

// #endregion types

// #region server
// Server implements CryContextServer.
type Server struct {
	store      *store.Store
	engine     *adjust.Engine
	harness    *eval.EvalHarness
	classifier Classifier
	logger     *slog.Logger
	opts       Options
	clock      func() time.Time
}

// New creates a server. classifier may be nil, in which case requests must
// carry raw scores.
func New(st *store.Store, engine *adjust.Engine, harness *eval.EvalHarness, classifier Classifier, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		store:      st,
		engine:     engine,
		harness:    harness,
		classifier: classifier,
		logger:     logger,
		opts:       opts,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// Adjust handles one gRPC request.
func (s *Server) Adjust(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req Request
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	resp, err := s.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err := toStruct(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// Handle runs one adjustment. Errors carry gRPC status codes.
func (s *Server) Handle(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.BabyID) == "" {
		return Response{}, status.Error(codes.InvalidArgument, "baby_id is required")
	}
	now := s.clock()
	if req.Now != "" {
		t, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			return Response{}, status.Errorf(codes.InvalidArgument, "parse now: %v", err)
		}
		now = t
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	// 1. Snapshot
	snap, err := s.store.Snapshot(ctx, req.BabyID, now, s.opts.Lookback)
	if errors.Is(err, store.ErrNotFound) {
		return Response{}, status.Errorf(codes.NotFound, "baby %s not found", req.BabyID)
	}
	if err != nil {
		return Response{}, toStatus(ctx, fmt.Errorf("load snapshot: %w", err))
	}

	// 2. Raw scores
	raw, err := s.rawScores(ctx, req)
	if err != nil {
		return Response{}, err
	}

	// 3. Engine
	input := snap.Input(raw, now)
	out := s.engine.Adjust(input)

	// 4. Invariants
	ev := s.harness.Run(out)
	if !ev.Passed {
		s.logger.Warn("adjustment failed invariant checks", "baby_id", req.BabyID, "reason", ev.Reason)
	}

	// 5. Provenance
	id, err := logging.LogAdjustment(s.store.DB(), logging.AdjustmentEntry{
		BabyID: req.BabyID,
		Record: logging.AdjustmentRecord{
			Source: "grpc",
			Input:  input,
			Config: s.engine.Config(),
			Output: out,
			Eval:   &ev,
		},
	})
	if err != nil {
		return Response{}, toStatus(ctx, err)
	}

	s.logger.Info("adjusted",
		"adjustment_id", id,
		"baby_id", req.BabyID,
		"label", string(out.FinalLabel),
		"confidence", out.Confidence,
		"rules", len(out.Trace),
	)
	return Response{AdjustmentID: id, Output: out, Eval: ev}, nil
}

func (s *Server) rawScores(ctx context.Context, req Request) (map[string]float64, error) {
	if len(req.RawScores) > 0 {
		return req.RawScores, nil
	}
	if req.AudioB64 == "" {
		return nil, status.Error(codes.InvalidArgument, "raw_scores or audio_b64 is required")
	}
	if s.classifier == nil {
		return nil, status.Error(codes.FailedPrecondition, "no classifier configured for audio requests")
	}
	audio, err := base64.StdEncoding.DecodeString(req.AudioB64)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode audio: %v", err)
	}
	raw, err := s.classifier.Classify(ctx, audio, req.MimeType, req.BabyID)
	if err != nil {
		return nil, classifyStatus(err)
	}
	return raw, nil
}

// classifyStatus keeps the classifier's own status code. A reply without
// usable scores is Internal; an unreachable classifier is Unavailable.
func classifyStatus(err error) error {
	if errors.Is(err, codec.ErrNoScores) {
		return status.Errorf(codes.Internal, "classify: %v", err)
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return status.Errorf(st.Code(), "classify: %s", st.Message())
	}
	return status.Errorf(codes.Unavailable, "classify: %v", err)
}

// toStatus maps a deadline to DeadlineExceeded and anything else to Internal.
func toStatus(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return status.Errorf(codes.DeadlineExceeded, "%v", err)
	}
	return status.Errorf(codes.Internal, "%v", err)
}

// #endregion server

// #region serve
// Serve registers s on a new gRPC server and serves lis until ctx is done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	gs := grpc.NewServer()
	Register(gs, s)

	errCh := make(chan error, 1)
	go func() { errCh <- gs.Serve(lis) }()
	s.logger.Info("serving", "addr", lis.Addr().String(), "service", ServiceName)

	select {
	case <-ctx.Done():
		gs.GracefulStop()
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}

// #endregion serve
