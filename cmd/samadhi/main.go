package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ayusman/samadhi/internal/capture"
	"github.com/ayusman/samadhi/internal/classifier"
	"github.com/ayusman/samadhi/internal/config"
	"github.com/ayusman/samadhi/internal/monitoring"
	"github.com/ayusman/samadhi/internal/server"
	"github.com/ayusman/samadhi/internal/session"
	"github.com/ayusman/samadhi/internal/store"
	"github.com/ayusman/samadhi/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	reference := flag.String("reference", "", "reference video to follow (overrides config)")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	fmt.Println("Samadhi - Pose Tracking")

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *reference != "" {
		cfg.ReferenceVideo = *reference
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	app := session.New(session.Config{
		Store: st,
		Camera: capture.Config{
			DeviceID: cfg.CameraID,
			Mirror:   cfg.CameraMirror,
		},
		ReferenceVideo: cfg.ReferenceVideo,
		ReferenceURL:   cfg.ReferenceURL,
		Source:         cfg.Source,
		FPS:            int(cfg.FPS),
		Options:        classifier.Options{Lambda: cfg.Lambda, MinScore: cfg.MinScore},
	})
	defer app.Close()

	if err := app.LoadCatalog(); err != nil {
		log.Fatalf("Failed to load reference poses: %v", err)
	}

	hub := server.NewObservationHub()
	app.OnObservation(hub.Publish)

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:    webDir,
		Store:        st,
		Tracker:      app.Tracker(),
		Lambdas:      cfg.Lambdas,
		Preview:      app,
		Observations: hub,
		OnReferencesChanged: func() {
			if err := app.LoadCatalog(); err != nil {
				monitoring.Logf("Failed to reload reference poses: %v", err)
			}
		},
	})

	app.SetEnabled(true)
	if err := app.Start(); err != nil {
		monitoring.Logf("Tracking not started: %v", err)
	}

	if *noTray {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	t := tray.New()
	t.OnToggle(app.SetEnabled)
	t.OnReset(app.Tracker().ResetAll)
	t.OnSave(func() { saveSession(app) })
	t.OnDashboard(func() { openBrowser("http://localhost" + cfg.Addr) })
	t.OnQuit(func() { app.Stop() })
	app.OnObservation(func(o session.Observation) {
		t.SetLastPose(o.Pose, 100*(1-o.PoseDistance))
	})
	t.Run()
}

// saveSession stops tracking and stores the timeline as a record.
func saveSession(app *session.App) {
	app.Stop()
	rec, err := app.SaveRecord()
	if errors.Is(err, session.ErrNoSession) {
		return
	}
	if err != nil {
		monitoring.Logf("Failed to save session: %v", err)
		return
	}
	monitoring.Logf("Saved session %s: %d segments, score %.1f", rec.ID, len(rec.Timelines), rec.TotalScore)
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		monitoring.Logf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}
