package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mood-engine/internal/api"
	"mood-engine/internal/archive"
	"mood-engine/internal/bus"
	"mood-engine/internal/capture"
	"mood-engine/internal/config"
	database "mood-engine/internal/db"
	"mood-engine/internal/inference"
	"mood-engine/internal/mood"
	"mood-engine/internal/notify"
	"mood-engine/internal/scheduler"
	"mood-engine/internal/session"
	"mood-engine/internal/wavenc"
)

func main() {
	// 1. Parse Flags
	simulate := flag.Bool("simulate", false, "Run without hardware using synthetic captures")
	intervalMin := flag.Int("interval", 0, "Override re-detection interval (minutes)")
	token := flag.String("token", "", "Start signed in with this bearer token")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// 2. Load Config (.env first, then environment + config.yaml)
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}
	cfg := config.Load()

	if *intervalMin > 0 {
		cfg.Detection.IntervalMinutes = *intervalMin
	}

	log.Println("🚀 Starting Mood Engine...")

	// 3. Init Infrastructure
	db := database.New(cfg)
	db.AutoMigrate()
	scheduler.RegisterMetrics()

	eventBus := bus.New(cfg.Bus.StateFile)
	if err := eventBus.Watch(); err != nil {
		log.Printf("⚠️ Cross-process mood watch unavailable: %v", err)
	}
	defer eventBus.Close()

	sessions := session.NewManager(cfg.Detection.Enabled)
	if *token != "" {
		sessions.SignIn(*token)
	}

	store := mood.NewStore(db, eventBus, cfg.MoodFreshness(), cfg.Detection.HistoryLimit)
	cache := mood.NewCache(db, cfg.CacheTTL())
	notifier := notify.New(5*time.Second, 15*time.Second)

	heuristic := inference.NewHeuristic(cfg.Inference.Profiles)
	client := inference.NewClient(
		cfg.Inference.BaseURL,
		time.Duration(cfg.Inference.TimeoutSec)*time.Second,
		cfg.Inference.TrackLimit,
		sessions.Token,
		heuristic,
	)

	var backend capture.Backend = capture.NewFFmpegBackend(cfg)
	if *simulate {
		log.Println("🧪 Simulation mode: hardware capture disabled")
		backend = capture.SimulatedBackend{}
	}
	acquirer := capture.NewAcquirer(backend)
	recorder := capture.NewRecorder()
	encoder := wavenc.NewEncoder(&wavenc.FFmpegDecoder{})

	sched := scheduler.New(cfg, acquirer, recorder, encoder, client, store, notifier, archive.New(cfg), db, sessions)

	// 4. Evict the previous mood's cached tracks whenever the mood changes.
	// The cache itself is passive; this consumer owns invalidation.
	go func() {
		changes := eventBus.Subscribe()
		previous := ""
		for change := range changes {
			if previous != "" && previous != change.Mood {
				cache.Evict(previous)
			}
			previous = change.Mood
		}
	}()

	// 5. Hardware must be released even on ungraceful exits.
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("👋 Shutting down, releasing capture hardware")
		cancel()
		acquirer.ReleaseCurrent()
		eventBus.Close()
		os.Exit(0)
	}()

	// 6. Arm the detection schedule and serve the control API.
	sched.Start(ctx)

	server := api.New(cfg, store, cache, sched, sessions, notifier, eventBus, client)
	if err := server.Start(cfg.Server.Port); err != nil {
		log.Fatalf("API server crashed: %v", err)
	}
}
