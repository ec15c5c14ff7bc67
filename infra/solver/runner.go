// Package solver runs an external integer-programming solver as a
// subprocess and adapts it to the schedule solver interface.
package solver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/axwifi/musched/core/roundsched"
	"github.com/axwifi/musched/infra/logger"
)

// Config describes the solver subprocess.
type Config struct {
	// Command is the executable to run.
	Command string `json:"command" yaml:"command"`
	// Args are fixed arguments placed before the generated problem arguments.
	Args []string `json:"args" yaml:"args"`
	// ResultFile is the path the solver writes its matching to, one
	// "packet,round" pair per line. Relative paths resolve against WorkDir.
	ResultFile string `json:"result_file" yaml:"result_file"`
	// WorkDir is the subprocess working directory. Empty means inherit.
	WorkDir string `json:"work_dir" yaml:"work_dir"`
	// TimeoutSeconds bounds one solver run.
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.ResultFile == "" {
		c.ResultFile = "schedule.out"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Command == "" {
		return fmt.Errorf("solver command is required")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	return nil
}

// Runner invokes the external solver once per period. The problem is passed
// as positional arguments and the matching is read back from the result file.
type Runner struct {
	cfg Config
	log logger.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg Config) (*Runner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, log: logger.New("ext-solver")}, nil
}

// Solve implements roundsched.Solver.
func (r *Runner) Solve(req roundsched.SolveRequest) ([]roundsched.SolvedPair, error) {
	resultPath := r.cfg.ResultFile
	if !filepath.IsAbs(resultPath) && r.cfg.WorkDir != "" {
		resultPath = filepath.Join(r.cfg.WorkDir, resultPath)
	}
	// A stale result from a previous run must not be mistaken for output.
	if err := os.Remove(resultPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale result %s: %w", resultPath, err)
	}

	args := append([]string{}, r.cfg.Args...)
	args = append(args,
		strconv.Itoa(req.Rounds),
		strconv.Itoa(len(req.Entries)),
		strconv.Itoa(req.RuTypeIndex),
		strconv.Itoa(req.TotalTones),
	)
	for _, e := range req.Entries {
		args = append(args,
			strconv.Itoa(e.Arrival),
			strconv.Itoa(e.Deadline),
			strconv.FormatFloat(e.Penalty, 'f', -1, 64),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.TimeoutSeconds)*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, r.cfg.Command, args...)
	cmd.Dir = r.cfg.WorkDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.log.Errorf("solver run failed: %v, output: %s", err, strings.TrimSpace(string(out)))
		return nil, fmt.Errorf("run %s: %w", r.cfg.Command, err)
	}
	r.log.Debugf("solver finished, %d packets over %d rounds", len(req.Entries), req.Rounds)

	return readResult(resultPath)
}

// readResult parses the solver's result file. Blank lines and lines starting
// with '#' are skipped.
func readResult(path string) ([]roundsched.SolvedPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result %s: %w", path, err)
	}
	var pairs []roundsched.SolvedPair
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return nil, fmt.Errorf("result line %d: expected packet,round got %q", i+1, line)
		}
		pkt, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("result line %d: bad packet index: %w", i+1, err)
		}
		round, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("result line %d: bad round: %w", i+1, err)
		}
		pairs = append(pairs, roundsched.SolvedPair{Packet: pkt, Round: round})
	}
	return pairs, nil
}
