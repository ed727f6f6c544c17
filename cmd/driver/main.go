// Command driver runs the race client: it connects to a SCR-patched TORCS
// simulator over UDP, feeds telemetry to a decision agent, and sends the
// resulting actuator commands back, optionally journaling every step to
// sqlite and serving a read-only diagnostics API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/banshee-data/trackpilot/internal/agent"
	"github.com/banshee-data/trackpilot/internal/api"
	"github.com/banshee-data/trackpilot/internal/config"
	"github.com/banshee-data/trackpilot/internal/db"
	"github.com/banshee-data/trackpilot/internal/render"
	"github.com/banshee-data/trackpilot/internal/session"
	"github.com/banshee-data/trackpilot/internal/version"
)

var (
	host       = flag.String("host", "localhost", "Simulator host")
	port       = flag.Int("port", 3001, "Simulator port")
	sid        = flag.String("id", "SCR", "Session identifier sent to the server")
	steps      = flag.Int("steps", 100000, "Maximum simulation steps (1 sec ~ 50 steps)")
	episodes   = flag.Int("episodes", 1, "Number of sessions to run back to back")
	track      = flag.String("track", "unknown", "Your name for this track")
	stage      = flag.Int("stage", config.StageUnknown, "0=warm-up, 1=qualifying, 2=race, 3=unknown")
	debug      = flag.Bool("debug", false, "Output full telemetry each step")
	listen     = flag.String("listen", "", "Diagnostics listen address (empty disables)")
	journal    = flag.String("journal", "", "Path to sqlite race journal (empty disables)")
	migrations = flag.String("migrations", "", "Migrations directory to apply to the journal schema")
	configPath = flag.String("config", "", "Path to JSON config file (flags override)")
	vision     = flag.Bool("vision", false, "Relaunch the simulator with -vision")
	showVer    = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("driver %s (%s)\n", version.Version, version.GitSHA)
		return
	}

	// Config file fills in anything the flags left at their defaults.
	if *configPath != "" {
		cfg, err := config.LoadClientConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		applyConfig(cfg)
	}

	var journalDB *db.DB
	if *journal != "" {
		var err error
		journalDB, err = db.NewDB(*journal)
		if err != nil {
			log.Fatalf("failed to open journal: %v", err)
		}
		defer journalDB.Close()
		if *migrations != "" {
			if err := journalDB.MigrateUp(*migrations); err != nil {
				log.Fatalf("failed to migrate journal: %v", err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	var httpServer *http.Server

	driver := agent.NewHeuristic()

	for ep := 0; ep < *episodes; ep++ {
		if ctx.Err() != nil {
			break
		}
		sess, err := session.Dial(session.Config{
			Host:     *host,
			Port:     *port,
			SID:      *sid,
			Launcher: &session.SimulatorLauncher{Vision: *vision},
		})
		if err != nil {
			log.Fatalf("failed to open session: %v", err)
		}

		// The diagnostics server follows the first live session.
		if *listen != "" && httpServer == nil {
			mux := api.NewServer(sess, journalDB).ServeMux()
			httpServer = &http.Server{Addr: *listen, Handler: api.LoggingMiddleware(mux)}
			wg.Add(1)
			go func() {
				defer wg.Done()
				log.Printf("diagnostics listening on %s", *listen)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("diagnostics server: %v", err)
				}
			}()
		}

		if err := runEpisode(ctx, sess, driver, journalDB); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("episode %d: %v", ep, err)
		}
		if err := sess.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}

	if httpServer != nil {
		httpServer.Close()
	}
	stop()
	wg.Wait()
}

// runEpisode drives one session: handshake, then the receive/decide/send
// loop until a terminal server signal, the step bound, or cancellation.
func runEpisode(ctx context.Context, sess *session.Session, driver agent.Agent, journalDB *db.DB) error {
	if err := sess.Connect(ctx); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	var sessionID string
	if journalDB != nil {
		var err error
		sessionID, err = journalDB.StartSession(*host, *port, *sid, *stage, *track)
		if err != nil {
			log.Printf("journal: %v", err)
		}
	}
	outcome, finalPos := "steps", 0

	for step := 0; step < *steps; step++ {
		reading, err := sess.Receive(ctx)
		if err != nil {
			endSession(journalDB, sessionID, "error", 0)
			return err
		}
		if reading.Outcome.Terminal() {
			outcome, finalPos = reading.Outcome.String(), reading.FinalPos
			break
		}

		act := driver.Decide(reading.Snapshot)
		if err := sess.Send(act); err != nil {
			endSession(journalDB, sessionID, "error", 0)
			return err
		}

		if *debug {
			fmt.Print("\x1b[2J\x1b[H") // clear for steady output
			fmt.Print(render.Snapshot(reading.Snapshot))
			fmt.Print(render.Action(act))
		}
		if journalDB != nil && sessionID != "" {
			if err := journalDB.RecordFrame(sessionID, step, reading.Snapshot); err != nil {
				log.Printf("journal: %v", err)
			}
			if err := journalDB.RecordAction(sessionID, step, act); err != nil {
				log.Printf("journal: %v", err)
			}
		}
	}

	endSession(journalDB, sessionID, outcome, finalPos)
	log.Printf("episode finished: outcome=%s frames=%d", outcome, sess.Frames())
	return nil
}

func endSession(journalDB *db.DB, sessionID, outcome string, finalPos int) {
	if journalDB == nil || sessionID == "" {
		return
	}
	if err := journalDB.EndSession(sessionID, outcome, finalPos); err != nil {
		log.Printf("journal: %v", err)
	}
}

// applyConfig copies config-file values into any flag still at its default.
func applyConfig(cfg *config.ClientConfig) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["host"] {
		*host = cfg.GetHost()
	}
	if !set["port"] {
		*port = cfg.GetPort()
	}
	if !set["id"] {
		*sid = cfg.GetSID()
	}
	if !set["stage"] {
		*stage = cfg.GetStage()
	}
	if !set["track"] {
		*track = cfg.GetTrack()
	}
	if !set["debug"] {
		*debug = cfg.GetDebug()
	}
	if !set["steps"] {
		*steps = cfg.GetMaxSteps()
	}
	if !set["episodes"] {
		*episodes = cfg.GetEpisodes()
	}
	if !set["listen"] && cfg.GetListen() != "" {
		*listen = cfg.GetListen()
	}
	if !set["journal"] && cfg.GetJournal() != "" {
		*journal = cfg.GetJournal()
	}
}
