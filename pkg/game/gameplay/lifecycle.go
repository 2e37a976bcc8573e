package gameplay

import (
	"context"

	"github.com/sirupsen/logrus"

	"rescuesim/pkg/game/state"
)

// CheckEnd evaluates the end conditions in order: structural collapse, then
// too many lost lives, then enough saved lives, then the turn limit.
func CheckEnd(g *state.Game) state.Outcome {
	out := state.Outcome{
		Result: state.Running,
		Saved:  g.Saved,
		Lost:   g.Lost,
		Turns:  g.Turn,
	}
	switch {
	case g.Structure.Collapsed():
		out.Result, out.Reason = state.Defeat, state.ReasonStructural
	case g.Lost >= g.Config.LostLivesLimit:
		out.Result, out.Reason = state.Defeat, state.ReasonCasualties
	case g.Saved >= g.Config.SavedLivesGoal:
		out.Result = state.Victory
	case g.Turn >= g.Config.MaxTurns:
		out.Result, out.Reason = state.Defeat, state.ReasonTurnLimit
	}
	return out
}

// Step runs one turn. ended is true when the run was already over at the
// start of the call, in which case nothing else happens.
func Step(g *state.Game) (out state.Outcome, ended bool) {
	if g.Ended() {
		return g.Outcome, true
	}
	if out := CheckEnd(g); out.Ended() {
		g.Outcome = out
		g.Log.WithFields(logrus.Fields{
			"result": out.Result,
			"reason": out.Reason,
			"saved":  out.Saved,
			"lost":   out.Lost,
			"turns":  out.Turns,
		}).Info("run ended")
		return out, true
	}

	g.ClearMessages()
	g.Structure.ResetLedger()
	if g.Turn > 0 {
		g.Hazards.Snowfall()
	}

	g.RefreshHazards()
	g.Smoke, g.Fires = g.Hazards.SpreadSmoke(g.Smoke, g.Fires)

	ResolveCasualties(g)
	BurnPOIs(g)

	g.ShuffleOrder()
	SpawnPOIs(g)
	AssignPOIs(g)
	AssignFires(g)

	for _, a := range g.ActivationOrder() {
		TakeTurn(g, a)
	}

	g.RefreshOccupancy()
	g.Turn++
	g.Outcome = state.Outcome{Result: state.Running, Saved: g.Saved, Lost: g.Lost, Turns: g.Turn}
	return g.Outcome, false
}

// Run steps g until the run ends or ctx is cancelled. observe, if set,
// receives a snapshot after every turn.
func Run(ctx context.Context, g *state.Game, observe func(state.Snapshot)) (state.Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return g.Outcome, err
		}
		out, ended := Step(g)
		if ended {
			return out, nil
		}
		if observe != nil {
			observe(g.TakeSnapshot())
		}
	}
}
