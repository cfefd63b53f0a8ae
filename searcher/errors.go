package searcher

import "errors"

var (
	// ErrInvalidSettings is returned by New and NewMCTS for settings that cannot be searched with.
	ErrInvalidSettings = errors.New("invalid search settings")
	// ErrInvalidPriors is returned when the root's move priors are negative or do not sum to 1.
	ErrInvalidPriors = errors.New("invalid move priors")
	// ErrNoMoves is returned when every legal root move is excluded.
	ErrNoMoves = errors.New("no searchable root moves")
	// ErrNoBudget is returned by NewMCTS when neither a duration nor a node count is given.
	ErrNoBudget = errors.New("must specify search duration or nodes")
	// ErrContractViolation marks an Oracle or Evaluator answer that breaks its contract.
	// Inside a running search it is raised as a panic.
	ErrContractViolation = errors.New("oracle contract violation")
)
