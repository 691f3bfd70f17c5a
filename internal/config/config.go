// Package config loads the single-table server's settings from an
// optional HCL file, layered under the CLI flags defined in
// cmd/server.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// TableSettings is the HCL-configurable portion of the table's rules.
// cmd/server passes only the blinds and starting stack on to the
// session; TopUpThreshold and TopUpTarget are loaded and validated but
// the table keeps its own 5x/100x big blind top-up policy.
type TableSettings struct {
	SmallBlind     int `hcl:"small_blind,optional"`
	BigBlind       int `hcl:"big_blind,optional"`
	StartingStack  int `hcl:"starting_stack,optional"`
	TopUpThreshold int `hcl:"top_up_threshold,optional"`
	TopUpTarget    int `hcl:"top_up_target,optional"`
}

// File is the top-level shape of the optional HCL config file.
type File struct {
	Table TableSettings `hcl:"table,block"`
}

// Default returns the built-in table settings, matching the wire
// protocol's documented constants.
func Default() TableSettings {
	const bigBlind = 4
	return TableSettings{
		SmallBlind:     2,
		BigBlind:       bigBlind,
		StartingStack:  400,
		TopUpThreshold: 5 * bigBlind,
		TopUpTarget:    100 * bigBlind,
	}
}

// Load reads path if it exists, falling back to Default() with no
// error when it does not; any value the file omits is filled in from
// Default().
func Load(path string) (TableSettings, error) {
	settings := Default()
	if path == "" {
		return settings, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return TableSettings{}, fmt.Errorf("config: parse %s: %s", path, diags.Error())
	}

	var file File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return TableSettings{}, fmt.Errorf("config: decode %s: %s", path, diags.Error())
	}

	if file.Table.SmallBlind != 0 {
		settings.SmallBlind = file.Table.SmallBlind
	}
	if file.Table.BigBlind != 0 {
		settings.BigBlind = file.Table.BigBlind
	}
	if file.Table.StartingStack != 0 {
		settings.StartingStack = file.Table.StartingStack
	}
	if file.Table.TopUpThreshold != 0 {
		settings.TopUpThreshold = file.Table.TopUpThreshold
	}
	if file.Table.TopUpTarget != 0 {
		settings.TopUpTarget = file.Table.TopUpTarget
	}
	return settings, nil
}

// Validate rejects nonsensical table settings.
func (s TableSettings) Validate() error {
	if s.SmallBlind <= 0 {
		return fmt.Errorf("config: small blind must be positive, got %d", s.SmallBlind)
	}
	if s.BigBlind <= s.SmallBlind {
		return fmt.Errorf("config: big blind (%d) must exceed small blind (%d)", s.BigBlind, s.SmallBlind)
	}
	if s.StartingStack <= 0 {
		return fmt.Errorf("config: starting stack must be positive, got %d", s.StartingStack)
	}
	if s.TopUpThreshold >= s.TopUpTarget {
		return fmt.Errorf("config: top-up threshold (%d) must be below target (%d)", s.TopUpThreshold, s.TopUpTarget)
	}
	return nil
}

// Timeouts holds the protocol's documented timing constants, also
// overridable from the CLI.
type Timeouts struct {
	ActionTimeout  time.Duration
	GraceTimeout   time.Duration
	RemovalTimeout time.Duration
	PingInterval   time.Duration
	PongTimeout    time.Duration
}

// DefaultTimeouts returns the protocol's documented defaults.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ActionTimeout:  30 * time.Second,
		GraceTimeout:   30 * time.Second,
		RemovalTimeout: 60 * time.Second,
		PingInterval:   30 * time.Second,
		PongTimeout:    10 * time.Second,
	}
}
