package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"spinsearch/internal/search"
)

// nonConvergenceExit is the exit code an evaluator command uses to report a
// calculation that ran but did not converge.
const nonConvergenceExit = 2

// commandEvaluator bridges evaluation to an external command. The
// configuration is written to the command's stdin as JSON; the command
// renders the ab initio input deck, runs the calculation, and prints the
// total energy as a single number on stdout. Cancellation kills the
// process through the exec context.
type commandEvaluator struct {
	argv []string
}

func newCommandEvaluator(argv []string) (*commandEvaluator, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("evaluator command is required")
	}
	return &commandEvaluator{argv: argv}, nil
}

func (e *commandEvaluator) Evaluate(ctx context.Context, c search.Configuration) (float64, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return 0, &search.EvalError{Kind: search.FailureMalformedInput, Err: err}
	}

	cmd := exec.CommandContext(ctx, e.argv[0], e.argv[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, &search.EvalError{Kind: search.FailureTimeout, Err: ctx.Err()}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == nonConvergenceExit {
			return 0, &search.EvalError{Kind: search.FailureNonConvergence, Err: fmt.Errorf("%s", strings.TrimSpace(stderr.String()))}
		}
		return 0, &search.EvalError{Kind: search.FailureResource, Err: err}
	}

	energy, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, &search.EvalError{Kind: search.FailureMalformedInput, Err: fmt.Errorf("parse energy from %q: %w", strings.TrimSpace(stdout.String()), err)}
	}
	return energy, nil
}
