// Package batch runs many independent simulations on a worker pool and
// aggregates their outcomes.
package batch

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"rescuesim/pkg/game/config"
	"rescuesim/pkg/game/gameplay"
	"rescuesim/pkg/game/layout"
	"rescuesim/pkg/game/setup"
	"rescuesim/pkg/game/state"
	"rescuesim/pkg/game/store"
)

// Options configures a batch
type Options struct {
	Config  config.Config
	Source  layout.Source
	Runs    int
	Workers int // defaults to GOMAXPROCS
	Log     logrus.FieldLogger
}

// Result is the outcome of one run. Run i is seeded with Config.Seed + i.
type Result struct {
	Index   int
	Seed    int64
	Outcome state.Outcome
	Record  store.RunRecord
	Err     error
}

// Stats aggregates a batch
type Stats struct {
	Runs      int                        `json:"runs"`
	Victories int                        `json:"victories"`
	Defeats   map[state.DefeatReason]int `json:"defeats"`
	// SavedInDefeat counts defeats by the number of lives saved before the end
	SavedInDefeat map[int]int `json:"saved_in_defeat"`
	MeanTurns     float64     `json:"mean_turns"`
	Failed        int         `json:"failed"`
}

// DefeatCount returns the total number of defeats
func (s Stats) DefeatCount() int {
	n := 0
	for _, c := range s.Defeats {
		n += c
	}
	return n
}

// SavedBuckets returns the keys of SavedInDefeat in ascending order
func (s Stats) SavedBuckets() []int {
	keys := make([]int, 0, len(s.SavedInDefeat))
	for k := range s.SavedInDefeat {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Run executes opts.Runs simulations. Runs not started before ctx is
// cancelled are reported with ctx's error.
func Run(ctx context.Context, opts Options) ([]Result, Stats) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	src := opts.Source
	if src == nil {
		src = setup.SourceFor(opts.Config.Board)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, opts.Runs)
	st := Stats{
		Defeats:       map[state.DefeatReason]int{},
		SavedInDefeat: map[int]int{},
	}
	var turns int

	var mu sync.Mutex
	wg := sync.WaitGroup{}
	jobs := make(chan int, opts.Runs)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := runOne(ctx, opts.Config, src, i, log)
				results[i] = res

				mu.Lock()
				if res.Err != nil {
					st.Failed++
				} else {
					st.Runs++
					turns += res.Outcome.Turns
					switch res.Outcome.Result {
					case state.Victory:
						st.Victories++
					case state.Defeat:
						st.Defeats[res.Outcome.Reason]++
						st.SavedInDefeat[res.Outcome.Saved]++
					}
				}
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < opts.Runs; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if st.Runs > 0 {
		st.MeanTurns = float64(turns) / float64(st.Runs)
	}
	log.WithFields(logrus.Fields{
		"runs":      st.Runs,
		"victories": st.Victories,
		"defeats":   st.DefeatCount(),
		"failed":    st.Failed,
	}).Info("batch finished")
	return results, st
}

func runOne(ctx context.Context, base config.Config, src layout.Source, i int, log logrus.FieldLogger) Result {
	cfg := base
	cfg.Seed = base.Seed + int64(i)
	res := Result{Index: i, Seed: cfg.Seed}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	g, err := setup.NewRun(cfg, src, log.WithFields(logrus.Fields{"run": i, "seed": cfg.Seed}))
	if err != nil {
		res.Err = err
		return res
	}
	out, err := gameplay.Run(ctx, g, nil)
	if err != nil {
		res.Err = err
		return res
	}
	res.Outcome = out
	res.Record = store.NewRecord(g, src.Name())
	return res
}

// Records returns the store records of every completed run in index order
func Records(results []Result) []store.RunRecord {
	var out []store.RunRecord
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Record)
		}
	}
	return out
}
