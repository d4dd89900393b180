package faces

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// ScriptedDetector returns canned detections keyed by frame name.  It exists
// for simulation and tests; production agents plug a real Detector in.
type ScriptedDetector struct {
	mu         sync.Mutex
	detections map[string][]Detection
}

func NewScriptedDetector(detections map[string][]Detection) *ScriptedDetector {
	return &ScriptedDetector{detections: detections}
}

func (d *ScriptedDetector) Detect(_ context.Context, frame Frame) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detections[frame.Name], nil
}

// LoadScript reads a detection script: a JSON object mapping frame names to
// detection lists, e.g.
//
//	{"frame_001.jpg": [{"bbox": {"xmin": 0.4, "ymin": 0.3, "width": 0.2, "height": 0.25}, "confidence": 0.99}]}
func LoadScript(path string) (map[string][]Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read detection script: %w", err)
	}

	var raw map[string][]struct {
		BBox       BoundingBox `json:"bbox"`
		Confidence float64     `json:"confidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse detection script: %w", err)
	}

	out := make(map[string][]Detection, len(raw))
	for name, dets := range raw {
		for _, d := range dets {
			out[name] = append(out[name], Detection{Box: d.BBox, Confidence: d.Confidence})
		}
	}
	return out, nil
}

// Set replaces the detections for a frame name.
func (d *ScriptedDetector) Set(name string, dets []Detection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.detections == nil {
		d.detections = make(map[string][]Detection)
	}
	d.detections[name] = dets
}
