package packer

import (
	"time"

	"go.uber.org/multierr"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/validate"
)

// ConfigResult is the outcome of building one config.
type ConfigResult struct {
	Config  string
	Success bool
	// Error is set when the build aborted.
	Error error
	// PatchErrors are patch files that stopped early. They do not fail the
	// build.
	PatchErrors []error

	// Name is the expanded name scheme.
	Name       string
	BuildDir   string
	Archive    string
	PackFormat int
	Copied     int
	// Fingerprint is an xxhash digest of the finished build tree.
	Fingerprint uint64
	Validation  *validate.Report
	Duration    time.Duration
}

// Result aggregates a whole build invocation.
type Result struct {
	Pack       string
	RunOption  string
	Version    string
	Total      int
	Successful int
	Failed     int
	Configs    []ConfigResult
	Duration   time.Duration
	// Error combines every failed config's error, nil when all succeeded.
	Error error
}

// Names lists the configs that were built, in order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Configs))
	for i, c := range r.Configs {
		names[i] = c.Config
	}
	return names
}

func (r *Result) add(c ConfigResult) {
	r.Configs = append(r.Configs, c)
	r.Total++
	if c.Success {
		r.Successful++
		return
	}
	r.Failed++
	r.Error = multierr.Append(r.Error, c.Error)
}
