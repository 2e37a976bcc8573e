package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leonelquinteros/gotext"
	log "github.com/sirupsen/logrus"

	"rescuesim/pkg/game/api"
	"rescuesim/pkg/game/batch"
	"rescuesim/pkg/game/config"
	"rescuesim/pkg/game/devtools"
	"rescuesim/pkg/game/gameplay"
	"rescuesim/pkg/game/renderer"
	"rescuesim/pkg/game/renderer/tui"
	"rescuesim/pkg/game/replay"
	"rescuesim/pkg/game/setup"
	"rescuesim/pkg/game/state"
	"rescuesim/pkg/game/store"
)

type options struct {
	mode     string
	config   string
	board    string
	seed     int64
	agents   int
	turns    int
	out      string
	in       string
	runs     int
	workers  int
	db       string
	addr     string
	render   bool
	delay    time.Duration
	dev      bool
	verbose  bool
	locales  string
	lang     string
	explicit map[string]bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.mode, "mode", "run", "run, batch, serve, replay or dump")
	flag.StringVar(&o.config, "config", "", "YAML config file (defaults are used when empty)")
	flag.StringVar(&o.board, "board", "", "board file, or \"random\" for a generated board (built-in board when empty)")
	flag.Int64Var(&o.seed, "seed", 1, "random seed (batch run i uses seed+i)")
	flag.IntVar(&o.agents, "agents", 6, "number of agents")
	flag.IntVar(&o.turns, "turns", 1000, "turn limit")
	flag.StringVar(&o.out, "out", "", "output file: history for run (.zst compresses), stats JSON for batch")
	flag.StringVar(&o.in, "in", "", "history file to read in replay mode")
	flag.IntVar(&o.runs, "n", 100, "number of runs in batch mode")
	flag.IntVar(&o.workers, "workers", 0, "batch workers (0 = GOMAXPROCS)")
	flag.StringVar(&o.db, "db", "", "SQLite database for finished runs")
	flag.StringVar(&o.addr, "addr", ":8585", "listen address in serve mode")
	flag.BoolVar(&o.render, "render", false, "draw every turn in the terminal (run mode)")
	flag.DurationVar(&o.delay, "delay", 0, "pause between rendered turns")
	flag.BoolVar(&o.dev, "dev", false, "use the developer board in dump mode")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	flag.StringVar(&o.locales, "locales", "", "directory of <lang>/LC_MESSAGES/default.po catalogues (English when empty)")
	flag.StringVar(&o.lang, "lang", "en_GB", "language of the terminal output")
	flag.Parse()

	o.explicit = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { o.explicit[f.Name] = true })
	return o
}

// loadConfig reads the config file and applies flags given on the command line
func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.config != "" {
		var err error
		if cfg, err = config.Load(o.config); err != nil {
			return cfg, err
		}
	}
	if o.explicit["seed"] {
		cfg.Seed = o.seed
	}
	if o.explicit["agents"] {
		cfg.Agents = o.agents
	}
	if o.explicit["turns"] {
		cfg.MaxTurns = o.turns
	}
	switch o.board {
	case "":
	case "random":
		cfg.Board.Generate = true
		cfg.Board.Seed = cfg.Seed
	default:
		cfg.Board.Path = o.board
	}
	return cfg, cfg.Validate()
}

func configureLogging(cfg config.Config, verbose bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

func openStore(path string) (*store.DB, error) {
	if path == "" {
		return nil, nil
	}
	return store.Open(path, log.StandardLogger())
}

func main() {
	o := parseFlags()

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	configureLogging(cfg, o.verbose)
	if o.locales != "" {
		gotext.Configure(o.locales, o.lang, "default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch o.mode {
	case "run":
		err = runOnce(ctx, cfg, o)
	case "batch":
		err = runBatch(ctx, cfg, o)
	case "serve":
		err = serve(ctx, cfg, o)
	case "replay":
		err = showReplay(o)
	case "dump":
		err = dump(cfg, o)
	default:
		err = fmt.Errorf("unknown mode %q", o.mode)
	}
	if err != nil {
		log.WithError(err).Error(o.mode + " failed")
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, cfg config.Config, o options) error {
	src := setup.SourceFor(cfg.Board)
	g, err := setup.NewRun(cfg, src, log.WithField("seed", cfg.Seed))
	if err != nil {
		return err
	}

	renderer.SetRenderer(tui.New(os.Stdout))
	renderer.Init()

	rec := replay.NewRecorder()
	out, err := gameplay.Run(ctx, g, func(s state.Snapshot) {
		rec.Observe(s)
		if o.render {
			renderer.Clear()
			renderer.RenderFrame(g, s)
			if o.delay > 0 {
				time.Sleep(o.delay)
			}
		}
	})
	if err != nil {
		return err
	}

	db, err := openStore(o.db)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		record := store.NewRecord(g, src.Name())
		record.HistoryPath = o.out
		if err := db.SaveRun(&record); err != nil {
			return err
		}
	}

	if o.out != "" {
		if err := replay.WriteFile(o.out, rec.Document()); err != nil {
			return err
		}
		log.WithField("path", o.out).Info("history written")
	}

	fmt.Println(renderer.FormatText("%s", gotext.Get("%s after %d turns: saved %d, lost %d, agents down %d, structure %d",
		outcomeLabel(out), out.Turns, out.Saved, out.Lost, g.AgentCasualties, g.Structure.DamageLeft)))
	return nil
}

func outcomeLabel(o state.Outcome) string {
	if o.Result == state.Victory {
		return gotext.Get("GOOD{victory}")
	}
	return gotext.Get("BAD{defeat} (%s)", o.Reason)
}

func runBatch(ctx context.Context, cfg config.Config, o options) error {
	if o.runs <= 0 {
		return errors.New("-n must be positive")
	}
	results, st := batch.Run(ctx, batch.Options{
		Config:  cfg,
		Runs:    o.runs,
		Workers: o.workers,
		Log:     log.StandardLogger(),
	})

	db, err := openStore(o.db)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := db.SaveRuns(batch.Records(results)); err != nil {
			return err
		}
	}

	if o.out != "" {
		b, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.out, b, 0644); err != nil {
			return err
		}
	}

	fmt.Printf("Batch %d done: %d victories, %d defeats\n", st.Runs, st.Victories, st.DefeatCount())
	for reason, n := range st.Defeats {
		fmt.Printf("  defeat %-18s %d\n", reason, n)
	}
	for _, saved := range st.SavedBuckets() {
		fmt.Printf("  saved %d before defeat: %d\n", saved, st.SavedInDefeat[saved])
	}
	if st.Failed > 0 {
		return fmt.Errorf("%d runs failed", st.Failed)
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config, o options) error {
	db, err := openStore(o.db)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	src := setup.SourceFor(cfg.Board)
	s := api.NewServer(cfg, src, db, log.StandardLogger())
	s.Addr = o.addr

	// Publish one run so the history endpoint has something to serve
	g, err := setup.NewRun(cfg, src, log.WithField("seed", cfg.Seed))
	if err != nil {
		return err
	}
	rec := replay.NewRecorder()
	if _, err := gameplay.Run(ctx, g, rec.Observe); err != nil {
		return err
	}
	s.SetHistory(rec.Document())

	srv := s.Start()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}

func showReplay(o options) error {
	if o.in == "" {
		return errors.New("-in is required in replay mode")
	}
	d, err := replay.ReadFile(o.in)
	if err != nil {
		return err
	}
	saved, lost, down := 0, 0, 0
	for i := range d.SavedLives {
		saved += d.SavedLives[i].Count
		lost += d.VictimsDead[i].Count
		down += d.AgentsDead[i].Count
	}
	damage := 0
	if n := len(d.StructuralDamageLeft); n > 0 {
		damage = d.StructuralDamageLeft[n-1].Value
	}
	fmt.Printf("%s: %d steps, saved %d, lost %d, agents down %d, structure %d\n",
		o.in, d.Steps(), saved, lost, down, damage)
	return nil
}

func dump(cfg config.Config, o options) error {
	var g *state.Game
	if o.dev {
		g = state.NewGame(cfg, devtools.DevGrid(), rand.New(rand.NewSource(cfg.Seed)), log.StandardLogger())
	} else {
		var err error
		if g, err = setup.NewRun(cfg, setup.SourceFor(cfg.Board), log.StandardLogger()); err != nil {
			return err
		}
	}
	path, err := devtools.DumpMapToFile(g, ".")
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
