package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"boardmcts/experiments"
	"boardmcts/game"
	"boardmcts/searcher"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	experiment := flag.String("experiment", "", "Experiment to run: rollout, noise, throughput or a YAML file")
	analyse := flag.String("analyse", "", "Board to search once, e.g. x.o/.x./... (rows from a1)")
	duration := flag.Duration("duration", time.Second, "Search time when analysing")
	nodes := flag.Uint64("nodes", 0, "Search node budget when analysing")
	exclude := flag.String("exclude", "", "Comma separated root moves to skip when analysing")
	level := flag.String("level", "info", "Log level")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(lvl)

	switch {
	case *analyse != "":
		err = runAnalysis(*analyse, *duration, *nodes, *exclude)
	case *experiment == "throughput":
		var results []experiments.Throughput
		results, err = experiments.RunThroughputExperiment(experiments.ArenaConfigs(), game.NewBoard())
		if err == nil {
			experiments.ReportThroughput(os.Stdout, results)
		}
	case *experiment != "":
		err = runExperiment(*experiment)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed")
	}
}

func runExperiment(name string) error {
	var config experiments.Config
	switch name {
	case "rollout":
		config = experiments.RolloutExperiment()
	case "noise":
		config = experiments.NoiseExperiment()
	default:
		var err error
		if config, err = experiments.LoadConfig(name); err != nil {
			return err
		}
	}

	result, err := experiments.Run(config)
	if err != nil {
		return err
	}
	experiments.Report(os.Stdout, result)
	return nil
}

func runAnalysis(position string, duration time.Duration, nodes uint64, exclude string) error {
	board, err := game.ParseBoard(position)
	if err != nil {
		return err
	}
	ttt, err := game.NewTicTacToe(game.DefaultParams())
	if err != nil {
		return err
	}

	var excluded []game.Square
	if exclude != "" {
		for _, s := range strings.Split(exclude, ",") {
			sq, err := game.ParseSquare(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			excluded = append(excluded, sq)
		}
	}
	settings := searcher.NewSettings(searcher.WithExcludedMoves(excluded...))

	options := []searcher.Option{searcher.WithMetrics()}
	if nodes > 0 {
		options = append(options, searcher.WithNodes(nodes))
	} else {
		options = append(options, searcher.WithDuration(duration))
	}
	mcts, err := searcher.NewMCTS[game.Board, game.Square](ttt, ttt, settings, options...)
	if err != nil {
		return err
	}
	mcts.OnProgress(func(p searcher.Progress[game.Square]) {
		fmt.Printf("info visits %d time %d score %.3f mem %d pv %s\n",
			p.Visits, p.Elapsed.Milliseconds(), p.Score, p.MemUsage, formatPV(p.PV))
	})

	decision, metric, err := mcts.Decide(board)
	if err != nil {
		return err
	}
	if !decision.HasMove {
		fmt.Printf("game over, score %.1f\n", decision.Score)
		return nil
	}
	for _, c := range decision.Children[:min(3, len(decision.Children))] {
		fmt.Printf("candidate %s visits %d share %.2f win %.3f prior %.3f\n", c.Move, c.Visits, c.VisitShare, c.WinProbability, c.Prior)
	}
	fmt.Printf("bestmove %s score %.3f stop %s simulations %d\n", decision.Move, decision.Score, decision.StopReason, metric.Simulations)
	return nil
}

func formatPV(pv []game.Square) string {
	moves := make([]string, 0, len(pv))
	for _, sq := range pv {
		moves = append(moves, sq.String())
	}
	return strings.Join(moves, " ")
}
