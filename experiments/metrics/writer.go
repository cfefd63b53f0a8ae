package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AgentConfig describes one searching agent of an experiment.
type AgentConfig struct {
	ID            int           `yaml:"id"`
	Duration      time.Duration `yaml:"duration"`
	Nodes         uint64        `yaml:"nodes"`
	ArenaCapacity uint32        `yaml:"arena_capacity"`
	// Exploration 0 keeps the searcher's default.
	Exploration        float64 `yaml:"exploration"`
	ExplorationBase    float64 `yaml:"exploration_base"`
	DirichletWeight    float64 `yaml:"dirichlet_weight"`
	DirichletAlpha     float64 `yaml:"dirichlet_alpha"`
	RolloutDepth       uint16  `yaml:"rollout_depth"`
	RolloutTemperature float64 `yaml:"rollout_temperature"`
	// Temperature > 0 samples moves by visit counts instead of playing the most visited one.
	Temperature float64 `yaml:"temperature"`
	Seed        uint64  `yaml:"seed"`
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates dir/name/<timestamp> for the records of one experiment run.
func NewWriter(dir, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "duration", "nodes", "arena_capacity", "exploration", "exploration_base",
		"dirichlet_weight", "dirichlet_alpha", "rollout_depth", "rollout_temperature", "temperature", "seed"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Duration.String(),
			strconv.FormatUint(config.Nodes, 10),
			strconv.FormatUint(uint64(config.ArenaCapacity), 10),
			formatFloat(config.Exploration),
			formatFloat(config.ExplorationBase),
			formatFloat(config.DirichletWeight),
			formatFloat(config.DirichletAlpha),
			strconv.Itoa(int(config.RolloutDepth)),
			formatFloat(config.RolloutTemperature),
			formatFloat(config.Temperature),
			strconv.FormatUint(config.Seed, 10),
		})
	}
	return w.write("agent_configs.csv", "agent configs", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agent1", "agent2", "starting_player", "winner", "start_time", "end_time", "duration", "total_moves"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		})
	}
	return w.write("game_records.csv", "game records", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "move", "score", "duration", "simulations", "rollouts",
		"full_playouts", "visits", "mem_usage", "stop_reason", "exhausted"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			record.Move,
			formatFloat(record.Score),
			record.Duration.String(),
			strconv.Itoa(record.Simulations),
			strconv.Itoa(record.Rollouts),
			strconv.Itoa(record.FullPlayouts),
			strconv.FormatUint(record.Visits, 10),
			strconv.FormatUint(record.MemUsage, 10),
			record.StopReason,
			strconv.FormatBool(record.Exhausted),
		})
	}
	return w.write("move_records.csv", "move records", header, rows)
}

func (w *Writer) write(file, what string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", what, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	// Write header
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", what, err)
	}

	// Write each row
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", what, err)
		}
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", what, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
