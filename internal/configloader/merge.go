package configloader

import (
	"slices"

	"github.com/yaklabco/spanedit/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Booleans: only true in override is applied
//   - Slices: override replaces base entirely if override is non-nil
//
// Rules are a list, so a non-nil override list replaces the base rules
// rather than merging into them.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Engine != "" {
		result.Engine = override.Engine
	}
	if override.Mode != "" {
		result.Mode = override.Mode
	}
	if override.Newline != "" {
		result.Newline = override.Newline
	}
	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	// false is the zero value, so an override can only switch these on.
	if override.Write {
		result.Write = true
	}
	if override.DryRun {
		result.DryRun = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}
	if override.IncludeVendored {
		result.IncludeVendored = true
	}
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}
	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}

	if override.Extensions != nil {
		result.Extensions = slices.Clone(override.Extensions)
	}
	if override.Ignore != nil {
		result.Ignore = slices.Clone(override.Ignore)
	}
	if override.Only != nil {
		result.Only = slices.Clone(override.Only)
	}
	if override.Rules != nil {
		result.Rules = override.Clone().Rules
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
