package agent

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodlv/facelock/internal/facelock/faces"
)

// DirSource plays image files from a directory in name order, one per
// Interval, standing in for a live camera during simulation and tests.
// When Loop is set it starts over after the last frame; otherwise Next
// returns io.EOF.
type DirSource struct {
	dir      string
	interval time.Duration
	loop     bool
	names    []string
	pos      int
}

func NewDirSource(dir string, interval time.Duration, loop bool) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("no frames in %s", dir)
	}

	return &DirSource{dir: dir, interval: interval, loop: loop, names: names}, nil
}

func (s *DirSource) Next(ctx context.Context) (faces.Frame, error) {
	if s.pos >= len(s.names) {
		if !s.loop {
			return faces.Frame{}, io.EOF
		}
		s.pos = 0
	}

	if s.interval > 0 {
		select {
		case <-time.After(s.interval):
		case <-ctx.Done():
			return faces.Frame{}, ctx.Err()
		}
	}

	name := s.names[s.pos]
	s.pos++

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return faces.Frame{}, fmt.Errorf("open frame %s: %w", name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return faces.Frame{}, fmt.Errorf("decode frame %s: %w", name, err)
	}

	return faces.Frame{Name: name, Image: img}, nil
}
