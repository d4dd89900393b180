// facelock-agent is the recognition-loop process.  It shares the SQLite
// database and the signature artifact with facelock-server, and talks to it
// only through the notify-access endpoint.
//
// Modes:
//
//	facelock-agent run      — process frames from FACELOCK_FRAMES_DIR
//	facelock-agent enroll   — one-shot enrollment from an image file
//	facelock-agent pin      — interactive PIN session on stdin
//
// Detection runs against a script (detections.json in the frames dir) —
// this binary is the simulation harness; a production agent swaps in a real
// faces.Detector.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alejandrodlv/facelock/internal/config"
	"github.com/alejandrodlv/facelock/internal/db"
	"github.com/alejandrodlv/facelock/internal/facelock/agent"
	"github.com/alejandrodlv/facelock/internal/facelock/faces"
	"github.com/alejandrodlv/facelock/internal/facelock/service"
	"github.com/alejandrodlv/facelock/internal/facelock/store/sqlite"
)

func main() {
	logger := log.New(os.Stdout, "facelock-agent ", log.LstdFlags|log.LUTC)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	mode := "run"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	identityStore := sqlite.NewIdentityStore(conn, writer)

	detector, err := loadDetector(cfg, mode)
	if err != nil {
		logger.Fatalf("detector: %v", err)
	}

	roster := service.NewRoster(service.RosterConfig{
		ArtifactPath: cfg.ArtifactPath,
		FacesDir:     cfg.FacesDir,
		Detector:     detector,
		Matcher:      faces.ToleranceMatcher{Tolerance: cfg.MatchTolerance},
	}, identityStore, logger)

	if err := roster.Reload(ctx); err != nil {
		logger.Printf("initial roster load: %v", err)
	}

	notifier := agent.NewNotifier(cfg.CoordinatorURL)
	decider := service.NewDecider(notifier, roster, service.DeciderConfig{
		Cooldown:       time.Duration(cfg.CooldownSeconds) * time.Second,
		MaxPINAttempts: cfg.MaxPINAttempts,
	})

	switch mode {
	case "run":
		if err := runLoop(ctx, cfg, detector, roster, decider, logger); err != nil && ctx.Err() == nil {
			logger.Fatalf("recognition loop: %v", err)
		}
	case "enroll":
		if err := runEnroll(ctx, roster, os.Args[2:]); err != nil {
			logger.Fatalf("enroll: %v", err)
		}
	case "pin":
		if err := agent.RunPINSession(ctx, decider, os.Stdin, os.Stdout); err != nil {
			logger.Fatalf("pin session: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: facelock-agent [run|enroll|pin]\n")
		os.Exit(2)
	}
}

func runLoop(ctx context.Context, cfg config.Config, detector faces.Detector, roster *service.Roster, decider *service.Decider, logger *log.Logger) error {
	if cfg.FramesDir == "" {
		return fmt.Errorf("FACELOCK_FRAMES_DIR is required in run mode")
	}

	// Pick up out-of-process enrollments immediately, even between frames.
	if err := roster.Watch(ctx); err != nil {
		logger.Printf("artifact watch unavailable: %v", err)
	}

	source, err := agent.NewDirSource(cfg.FramesDir, time.Duration(cfg.FrameDelayMs)*time.Millisecond, true)
	if err != nil {
		return err
	}

	logger.Printf("recognition loop started (frames=%s)", cfg.FramesDir)
	return agent.New(source, detector, roster, decider, logger).Run(ctx)
}

func runEnroll(ctx context.Context, roster *service.Roster, args []string) error {
	fs := flag.NewFlagSet("enroll", flag.ExitOnError)
	name := fs.String("name", "", "identity name (required)")
	age := fs.Int("age", 0, "identity age")
	pin := fs.String("pin", "", "identity PIN (optional)")
	imagePath := fs.String("image", "", "enrollment image file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *imagePath == "" {
		return fmt.Errorf("-name and -image are required")
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", *imagePath, err)
	}

	frame := faces.Frame{Name: filepath.Base(*imagePath), Image: img}
	if err := roster.Enroll(ctx, *name, frame, *age, *pin); err != nil {
		return err
	}
	fmt.Printf("%s enrolled\n", *name)
	return nil
}

// loadDetector builds the scripted detector from the frames dir.  PIN mode
// never detects, so it gets an empty script.
func loadDetector(cfg config.Config, mode string) (faces.Detector, error) {
	if mode == "pin" || cfg.FramesDir == "" {
		return faces.NewScriptedDetector(nil), nil
	}

	scriptPath := filepath.Join(cfg.FramesDir, "detections.json")
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		return faces.NewScriptedDetector(nil), nil
	}

	script, err := faces.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return faces.NewScriptedDetector(script), nil
}
