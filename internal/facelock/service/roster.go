package service

import (
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alejandrodlv/facelock/internal/facelock/faces"
	"github.com/alejandrodlv/facelock/internal/facelock/store"
)

// ErrNoFaceDetected is returned by Enroll when the detection capability
// found no face in the enrollment image.  Nothing is mutated in that case.
var ErrNoFaceDetected = errors.New("no detectable face in enrollment image")

// Roster is the single source of truth for enrolled identities.  It is the
// only writer of both the signature artifact and the identity table: enroll
// and prune go through here, everything else reads.
//
// The artifact is shared with an out-of-process enrollment tool, so there
// is no coordination protocol — the roster reconciles by re-checking the
// artifact's mod time on every Reload call and re-parsing when it changed.
// A few frames of stale "unknown" results during that window are harmless.
type Roster struct {
	artifactPath string
	facesDir     string
	detector     faces.Detector
	matcher      faces.Matcher
	ids          store.IdentityStore
	logger       *log.Logger

	mu      sync.RWMutex
	sigs    []faces.KnownSignature
	lastMod time.Time
}

type RosterConfig struct {
	ArtifactPath string
	FacesDir     string
	Detector     faces.Detector
	Matcher      faces.Matcher // nil = faces.ToleranceMatcher with defaults
}

func NewRoster(cfg RosterConfig, ids store.IdentityStore, logger *log.Logger) *Roster {
	matcher := cfg.Matcher
	if matcher == nil {
		matcher = faces.ToleranceMatcher{}
	}
	return &Roster{
		artifactPath: cfg.ArtifactPath,
		facesDir:     cfg.FacesDir,
		detector:     cfg.Detector,
		matcher:      matcher,
		ids:          ids,
		logger:       logger,
	}
}

// Reload reconciles the in-memory signature set with the artifact on disk.
//
// The artifact is re-parsed only when its mod time changed since the last
// successful load; an unparseable artifact clears the set (no identities
// means no face grants — fail safe-closed, not last-known-good) and the
// error is returned for logging.  Orphan pruning runs on every call: any
// identity whose reference image vanished is dropped from the artifact and
// hard-deleted from the roster table, and the pruned artifact is persisted.
//
// Readers never observe a partial set; the new set is built aside and
// swapped in under the lock.
func (r *Roster) Reload(ctx context.Context) error {
	mod, err := faces.ArtifactModTime(r.artifactPath)
	if err != nil {
		return fmt.Errorf("roster reload: %w", err)
	}

	r.mu.RLock()
	changed := !mod.Equal(r.lastMod)
	current := r.sigs
	r.mu.RUnlock()

	sigs := current
	if changed {
		loaded, loadedMod, err := faces.LoadArtifact(r.artifactPath)
		if err != nil {
			// Fail safe-closed: an unreadable artifact means no enrolled
			// signatures, not the last ones we happened to have in memory.
			// lastMod is left alone so the next cycle retries the parse.
			r.mu.Lock()
			r.sigs = nil
			r.mu.Unlock()
			return fmt.Errorf("roster reload: %w", err)
		}
		sigs = loaded
		mod = loadedMod
	}

	sigs, pruned, err := r.pruneOrphans(ctx, sigs)
	if err != nil {
		return err
	}
	if pruned {
		// The save just bumped the artifact's mod time.
		if mod, err = faces.ArtifactModTime(r.artifactPath); err != nil {
			return fmt.Errorf("roster reload: %w", err)
		}
	}

	r.mu.Lock()
	r.sigs = sigs
	r.lastMod = mod
	r.mu.Unlock()
	return nil
}

// pruneOrphans drops identities whose reference image no longer exists,
// persisting the pruned artifact and deleting the roster rows.  Returns the
// surviving set and whether anything was pruned.
func (r *Roster) pruneOrphans(ctx context.Context, sigs []faces.KnownSignature) ([]faces.KnownSignature, bool, error) {
	kept := sigs[:0:0]
	var removed []string
	for _, sig := range sigs {
		if _, err := os.Stat(r.imagePath(sig.Name)); os.IsNotExist(err) {
			removed = append(removed, sig.Name)
			continue
		}
		kept = append(kept, sig)
	}
	if len(removed) == 0 {
		return sigs, false, nil
	}

	if err := faces.SaveArtifact(r.artifactPath, kept); err != nil {
		return nil, false, fmt.Errorf("roster prune: %w", err)
	}
	for _, name := range removed {
		if err := r.ids.Delete(ctx, name); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, false, fmt.Errorf("roster prune %s: %w", name, err)
		}
		r.logger.Printf("pruned %s: reference image removed", name)
	}
	return kept, true, nil
}

// Enroll registers (or re-registers) an identity from a captured frame.
// The detection capability must find at least one face; the first
// detection's bounding box becomes the stored signature.  The reference
// image, the artifact and the roster row are all written before returning.
func (r *Roster) Enroll(ctx context.Context, name string, frame faces.Frame, age int, pin string) error {
	if name == "" {
		return fmt.Errorf("enroll: name is required")
	}

	dets, err := r.detector.Detect(ctx, frame)
	if err != nil {
		return fmt.Errorf("enroll %s: detect: %w", name, err)
	}
	if len(dets) == 0 {
		return fmt.Errorf("enroll %s: %w", name, ErrNoFaceDetected)
	}

	if err := r.writeReferenceImage(name, frame); err != nil {
		return fmt.Errorf("enroll %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-enrollment with the same name replaces the prior signature.
	next := make([]faces.KnownSignature, 0, len(r.sigs)+1)
	for _, sig := range r.sigs {
		if sig.Name != name {
			next = append(next, sig)
		}
	}
	next = append(next, faces.KnownSignature{Name: name, Box: dets[0].Box})

	if err := faces.SaveArtifact(r.artifactPath, next); err != nil {
		return fmt.Errorf("enroll %s: %w", name, err)
	}
	mod, err := faces.ArtifactModTime(r.artifactPath)
	if err != nil {
		return fmt.Errorf("enroll %s: %w", name, err)
	}

	if err := r.ids.Upsert(ctx, name, age, pin); err != nil {
		return fmt.Errorf("enroll %s: %w", name, err)
	}

	r.sigs = next
	r.lastMod = mod
	return nil
}

// Match resolves a detected bounding box to an enrolled identity name.
// ok=false means unknown; unknown detections never produce decisions.
func (r *Roster) Match(box faces.BoundingBox) (string, bool) {
	r.mu.RLock()
	sigs := r.sigs
	r.mu.RUnlock()
	return r.matcher.Match(box, sigs)
}

// LookupByPIN resolves a PIN to an active identity.  Satisfies
// PINValidator.
func (r *Roster) LookupByPIN(ctx context.Context, pin string) (string, bool, error) {
	return r.ids.LookupByPIN(ctx, pin)
}

// Known returns a copy of the current signature set.
func (r *Roster) Known() []faces.KnownSignature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]faces.KnownSignature, len(r.sigs))
	copy(out, r.sigs)
	return out
}

// Watch reloads the roster whenever the artifact file changes on disk, so
// an out-of-process enrollment is picked up immediately even when no frames
// are flowing (PIN-only deployments).  The per-frame Reload remains the
// primary reconciliation path.  Watch returns once the watcher is running;
// it stops when ctx is cancelled.
func (r *Roster) Watch(ctx context.Context) error {
	dir := filepath.Dir(r.artifactPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("roster watch: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("roster watch: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("roster watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(r.artifactPath)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := r.Reload(ctx); err != nil {
					r.logger.Printf("roster watch reload: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Printf("roster watch: %v", err)
			}
		}
	}()

	return nil
}

func (r *Roster) imagePath(name string) string {
	return filepath.Join(r.facesDir, name+".jpg")
}

func (r *Roster) writeReferenceImage(name string, frame faces.Frame) error {
	if frame.Image == nil {
		return fmt.Errorf("enrollment frame has no image")
	}
	if err := os.MkdirAll(r.facesDir, 0o755); err != nil {
		return fmt.Errorf("mkdir faces dir: %w", err)
	}
	f, err := os.Create(r.imagePath(name))
	if err != nil {
		return fmt.Errorf("write reference image: %w", err)
	}
	if err := jpeg.Encode(f, frame.Image, nil); err != nil {
		f.Close()
		return fmt.Errorf("encode reference image: %w", err)
	}
	return f.Close()
}
