package experiments

import (
	"errors"
	"fmt"
	"os"
	"time"

	"boardmcts/experiments/metrics"
	"boardmcts/game"

	"gopkg.in/yaml.v3"
)

const (
	NumGames   = 30 // Per match up
	TimeBudget = 10 * time.Millisecond
)

// Config is one experiment: a set of agents and the match ups between them.
type Config struct {
	Name      string `yaml:"name"`
	Games     int    `yaml:"games"` // Per match up
	OutputDir string `yaml:"output_dir"`
	// Position is the starting board, in game.ParseBoard notation; empty for a new game.
	Position string                `yaml:"position"`
	Params   *game.Params          `yaml:"params"`
	Agents   []metrics.AgentConfig `yaml:"agents"`
	// MatchUps pairs agent IDs; the first agent of a pair starts the odd games.
	MatchUps [][2]int `yaml:"match_ups"`
}

// LoadConfig reads a YAML experiment file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read experiment config: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	config := Config{Games: NumGames, OutputDir: "results"}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse experiment config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New("experiment needs a name")
	}
	if c.Games <= 0 {
		return fmt.Errorf("experiment %s: games must be positive, got %d", c.Name, c.Games)
	}
	ids := make(map[int]bool, len(c.Agents))
	for _, a := range c.Agents {
		if ids[a.ID] {
			return fmt.Errorf("experiment %s: duplicate agent id %d", c.Name, a.ID)
		}
		if a.Duration <= 0 && a.Nodes == 0 {
			return fmt.Errorf("experiment %s: agent %d needs a duration or a node budget", c.Name, a.ID)
		}
		ids[a.ID] = true
	}
	if len(c.MatchUps) == 0 {
		return fmt.Errorf("experiment %s: no match ups", c.Name)
	}
	for _, m := range c.MatchUps {
		for _, id := range m {
			if !ids[id] {
				return fmt.Errorf("experiment %s: match up refers to unknown agent %d", c.Name, id)
			}
		}
	}
	if c.Params != nil {
		if err := c.Params.Validate(); err != nil {
			return fmt.Errorf("experiment %s: %w", c.Name, err)
		}
	}
	if c.Position != "" {
		if _, err := game.ParseBoard(c.Position); err != nil {
			return fmt.Errorf("experiment %s: %w", c.Name, err)
		}
	}
	return nil
}

func (c Config) agent(id int) metrics.AgentConfig {
	for _, a := range c.Agents {
		if a.ID == id {
			return a
		}
	}
	panic(fmt.Sprintf("unknown agent %d", id))
}

// RolloutExperiment pits static evaluation against short and full rollouts.
func RolloutExperiment() Config {
	baseline := metrics.AgentConfig{ID: 0, Duration: TimeBudget} // Static evaluation
	configs := []metrics.AgentConfig{
		baseline,
		{ID: 1, Duration: TimeBudget, RolloutDepth: 2, RolloutTemperature: 0.25},
		{ID: 2, Duration: TimeBudget, RolloutDepth: 9, RolloutTemperature: 0.25}, // Full playout
		{ID: 3, Duration: TimeBudget, RolloutDepth: 9, RolloutTemperature: 1},
	}
	return Config{
		Name:      "rollout",
		Games:     NumGames,
		OutputDir: "results",
		Agents:    configs,
		MatchUps:  [][2]int{{0, 1}, {0, 2}, {0, 3}},
	}
}

// NoiseExperiment checks that root noise does not cost playing strength.
func NoiseExperiment() Config {
	return Config{
		Name:      "noise",
		Games:     NumGames,
		OutputDir: "results",
		Agents: []metrics.AgentConfig{
			{ID: 0, Nodes: 400},
			{ID: 1, Nodes: 400, DirichletWeight: 0.25, DirichletAlpha: 0.3, Seed: 1},
			{ID: 2, Nodes: 400, DirichletWeight: 0.5, DirichletAlpha: 0.3, Seed: 2},
		},
		MatchUps: [][2]int{{0, 1}, {0, 2}},
	}
}
