package experiments

import (
	"fmt"
	"io"

	"boardmcts/engine"

	"github.com/muesli/termenv"
)

// Tally counts the results of one match up from the first agent's side.
type Tally struct {
	Agent1, Agent2      int
	Wins, Draws, Losses int
}

// Tallies groups the game records of r by match up, in match up order.
func (r Result) Tallies() []Tally {
	tallies := make([]Tally, len(r.MatchUps))
	index := make(map[[2]int]int, len(r.MatchUps))
	for i, m := range r.MatchUps {
		tallies[i] = Tally{Agent1: m[0], Agent2: m[1]}
		index[m] = i
	}

	for _, g := range r.GameRecords {
		i, ok := index[[2]int{g.Agent1, g.Agent2}]
		if !ok {
			continue
		}
		switch g.Winner {
		case engine.Draw:
			tallies[i].Draws++
		case 0:
			tallies[i].Wins++
		default:
			tallies[i].Losses++
		}
	}
	return tallies
}

// Report writes a coloured per match up summary to w.
func Report(w io.Writer, r Result) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w, out.String(fmt.Sprintf("experiment %s", r.Name)).Bold())
	if r.Dir != "" {
		fmt.Fprintf(w, "records in %s\n", r.Dir)
	}
	for _, t := range r.Tallies() {
		fmt.Fprintf(w, "agent %d vs agent %d: %s %s %s\n", t.Agent1, t.Agent2,
			out.String(fmt.Sprintf("+%d", t.Wins)).Foreground(out.Color("2")),
			out.String(fmt.Sprintf("=%d", t.Draws)).Foreground(out.Color("3")),
			out.String(fmt.Sprintf("-%d", t.Losses)).Foreground(out.Color("1")),
		)
	}
}

// ReportThroughput writes one line per agent to w, highlighting searches that
// ran out of arena.
func ReportThroughput(w io.Writer, results []Throughput) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w, out.String("throughput").Bold())
	for _, t := range results {
		stop := out.String(t.StopReason)
		if t.StopReason == "exhausted" {
			stop = stop.Foreground(out.Color("1"))
		}
		fmt.Fprintf(w, "agent %d: %8d simulations %10.0f/s %10d bytes %s\n", t.Agent, t.Simulations, t.SimulationsPerSec, t.MemUsage, stop)
	}
}
