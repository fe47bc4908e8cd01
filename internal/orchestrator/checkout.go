package orchestrator

import (
	"os/exec"
)

// Checkout runs the final "make the working tree usable" step once every
// object has been materialized.
type Checkout interface {
	Run()
}

// ExternalGitCheckout shells out to the system git binary, exactly the
// original tool's final step: its exit status is informational only, since
// a dirty or incomplete dump can legitimately fail to check out cleanly.
type ExternalGitCheckout struct {
	Dir string
}

func (c ExternalGitCheckout) Run() {
	cmd := exec.Command("git", "checkout", ".")
	cmd.Dir = c.Dir
	_ = cmd.Run()
}
