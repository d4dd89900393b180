package faces

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// artifactVersion guards the on-disk format.  Bump when the layout changes.
const artifactVersion = 1

type artifactFile struct {
	Version int              `json:"version"`
	Faces   []KnownSignature `json:"faces"`
}

// LoadArtifact reads the signature artifact.  A missing file is not an
// error: it returns an empty set and a zero mod time.  A present but
// unparseable file returns the error so the caller can fail safe-closed.
func LoadArtifact(path string) ([]KnownSignature, time.Time, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("stat artifact: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, info.ModTime(), fmt.Errorf("read artifact: %w", err)
	}

	var af artifactFile
	if err := json.Unmarshal(data, &af); err != nil {
		return nil, info.ModTime(), fmt.Errorf("parse artifact: %w", err)
	}
	if af.Version != artifactVersion {
		return nil, info.ModTime(), fmt.Errorf("artifact version %d not supported", af.Version)
	}

	return af.Faces, info.ModTime(), nil
}

// SaveArtifact writes the signature set atomically (temp file + rename) so
// a reader polling the mod time never observes a partial write.
func SaveArtifact(path string, sigs []KnownSignature) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir artifact dir: %w", err)
	}

	data, err := json.MarshalIndent(artifactFile{Version: artifactVersion, Faces: sigs}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".faces-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// ArtifactModTime returns the artifact's current mod time, or a zero time
// when the file does not exist.
func ArtifactModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
