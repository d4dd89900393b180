// Package agent runs the recognition loop: frames in, decisions out.
// Camera acquisition and face detection are external capabilities; the
// agent only coordinates reload → detect → match → decide per frame.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/alejandrodlv/facelock/internal/facelock/faces"
	"github.com/alejandrodlv/facelock/internal/facelock/service"
)

// FrameSource supplies captured frames.  Next blocks until a frame is
// available and returns io.EOF when the source is exhausted.  Any other
// error is treated as acquisition failure and terminates the loop — with no
// source of frames there is nothing left to act on.
type FrameSource interface {
	Next(ctx context.Context) (faces.Frame, error)
}

// Agent is the recognition loop actor.  It runs single-threaded, one
// iteration per frame, against a roster and decider it does not own.
type Agent struct {
	source   FrameSource
	detector faces.Detector
	roster   *service.Roster
	decider  *service.Decider
	logger   *log.Logger
}

func New(source FrameSource, detector faces.Detector, roster *service.Roster, decider *service.Decider, logger *log.Logger) *Agent {
	return &Agent{
		source:   source,
		detector: detector,
		roster:   roster,
		decider:  decider,
		logger:   logger,
	}
}

// Run processes frames until the source is exhausted, the context is
// cancelled, or acquisition fails.
//
// Per-frame errors that are not acquisition failures — a roster reload
// hiccup, a failed notification — are logged and never block the next
// frame.
func (a *Agent) Run(ctx context.Context) error {
	for {
		frame, err := a.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame acquisition: %w", err)
		}

		if err := a.Step(ctx, frame); err != nil {
			a.logger.Printf("frame %s: %v", frame.Name, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Step handles a single frame: reconcile the roster, detect faces, match
// each detection, and let the decider apply cooldown and emit.
func (a *Agent) Step(ctx context.Context, frame faces.Frame) error {
	if err := a.roster.Reload(ctx); err != nil {
		// Fail-safe-closed reload already cleared the signature set; the
		// frame is still processed (everything will be unknown).
		a.logger.Printf("roster reload: %v", err)
	}

	dets, err := a.detector.Detect(ctx, frame)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	for _, det := range dets {
		name, ok := a.roster.Match(det.Box)
		if !ok {
			continue
		}
		notified, err := a.decider.ObserveFace(ctx, name, det.Confidence)
		if err != nil {
			a.logger.Printf("notify %s: %v", name, err)
			continue
		}
		if notified {
			a.logger.Printf("recognized %s (confidence %.2f)", name, det.Confidence)
		}
	}
	return nil
}
