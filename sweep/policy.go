package sweep

import (
	"fmt"
	"strings"

	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/core"
)

// SuccessPolicy decides whether a training run counts as a successful trial.
type SuccessPolicy int

const (
	// BeforeLastEpoch counts a trial when its epoch index is below budget-1.
	// A run converging exactly in the final epoch is therefore not counted.
	BeforeLastEpoch SuccessPolicy = iota
	// Converged counts a trial when training reached a zero-error epoch.
	Converged
)

func (p SuccessPolicy) String() string {
	switch p {
	case BeforeLastEpoch:
		return "before_last_epoch"
	case Converged:
		return "converged"
	}
	return fmt.Sprintf("SuccessPolicy(%d)", int(p))
}

// ParseSuccessPolicy maps a settings string to a policy. The empty string is BeforeLastEpoch.
func ParseSuccessPolicy(s string) (SuccessPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "before_last_epoch":
		return BeforeLastEpoch, nil
	case "converged":
		return Converged, nil
	}
	return 0, fmt.Errorf("success policy %q: %w", s, core.ErrInvalidConfig)
}

func (p SuccessPolicy) accept(res core.Result, epochBudget int) (bool, error) {
	switch p {
	case BeforeLastEpoch:
		return res.Epoch < epochBudget-1, nil
	case Converged:
		return res.Converged, nil
	}
	return false, fmt.Errorf("success policy %d: %w", int(p), core.ErrInvalidConfig)
}
