// Package faces holds the face-detection capability contract and the
// signature artifact shared between the recognition agent and the
// out-of-process enrollment tool.
//
// Detection itself is external: implementations of Detector wrap whatever
// vision stack the deployment runs.  This package only defines the
// normalized bounding-box descriptor ("signature") that stands in for a
// real face embedding.
package faces

import (
	"context"
	"image"
)

// BoundingBox is a face location in normalized [0,1] image coordinates.
type BoundingBox struct {
	XMin   float64 `json:"xmin"`
	YMin   float64 `json:"ymin"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Detection is one face found in a frame.
type Detection struct {
	Box        BoundingBox
	Confidence float64
}

// Frame is a single captured image.  Name identifies the frame to scripted
// detectors and logs; live sources may leave it empty.
type Frame struct {
	Name  string
	Image image.Image
}

// Detector is the upstream detection capability: zero or more faces per
// frame, each with a normalized bounding box and a confidence score.
type Detector interface {
	Detect(ctx context.Context, frame Frame) ([]Detection, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, frame Frame) ([]Detection, error)

func (f DetectorFunc) Detect(ctx context.Context, frame Frame) ([]Detection, error) {
	return f(ctx, frame)
}

// KnownSignature is an enrolled identity's reference descriptor.
type KnownSignature struct {
	Name string      `json:"name"`
	Box  BoundingBox `json:"bbox"`
}
