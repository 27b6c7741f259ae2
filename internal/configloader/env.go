package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/spanedit/pkg/config"
)

// envVarPrefix is the prefix for all spanedit environment variables.
const envVarPrefix = "SPANEDIT_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"ENGINE":           {"engine", envTypeString, "Default regexp engine: re2 or regexp2"},
	"MODE":             {"mode", envTypeString, "Default scan mode: whole or lines"},
	"NEWLINE":          {"newline", envTypeString, "Line terminator for lines mode: lf, crlf or cr"},
	"FLAVOR":           {"flavor", envTypeString, "Markdown flavor for skip_code rules: commonmark or gfm"},
	"FORMAT":           {"format", envTypeString, "Output format: text, json, diff or summary"},
	"WRITE":            {"write", envTypeBool, "Rewrite files in place: true or false"},
	"DRY_RUN":          {"dry_run", envTypeBool, "Show diffs without writing: true or false"},
	"JOBS":             {"jobs", envTypeInt, "Number of parallel workers (0 = auto)"},
	"BACKUPS_ENABLED":  {"backups.enabled", envTypeBool, "Keep a backup before writing: true or false"},
	"BACKUPS_MODE":     {"backups.mode", envTypeString, "Backup mode: sidecar or none"},
	"NO_BACKUPS":       {"no_backups", envTypeBool, "Disable backups: true or false"},
	"IGNORE":           {"ignore", envTypeSlice, "Comma-separated list of ignore patterns"},
	"EXTENSIONS":       {"extensions", envTypeSlice, "Comma-separated list of file extensions"},
	"INCLUDE_VENDORED": {"include_vendored", envTypeBool, "Rewrite vendored paths too: true or false"},
	"ONLY":             {"only", envTypeSlice, "Comma-separated list of rule names to run"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with SPANEDIT_ (e.g., SPANEDIT_ENGINE).
func LoadFromEnv(cfg *config.Config) error {
	return ApplyEnv(cfg, os.Getenv)
}

// ApplyEnv applies overrides read through getenv.
func ApplyEnv(cfg *config.Config, getenv func(string) string) error {
	if cfg == nil {
		return nil
	}

	for _, suffix := range sortedEnvSuffixes() {
		envVar := envVarPrefix + suffix
		value := getenv(envVar)
		if value == "" {
			continue
		}
		if err := applyEnvValue(cfg, envMappings[suffix], value, envVar); err != nil {
			return err
		}
	}
	return nil
}

func sortedEnvSuffixes() []string {
	suffixes := make([]string, 0, len(envMappings))
	for suffix := range envMappings {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)
	return suffixes
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue splits a comma-separated value, trimming each element
// and dropping empty ones.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "engine":
		cfg.Engine = value
	case "mode":
		cfg.Mode = config.Mode(value)
	case "newline":
		cfg.Newline = config.Newline(value)
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "backups.mode":
		cfg.Backups.Mode = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "write":
		cfg.Write = value
	case "dry_run":
		cfg.DryRun = value
	case "backups.enabled":
		cfg.Backups.Enabled = value
	case "no_backups":
		cfg.NoBackups = value
	case "include_vendored":
		cfg.IncludeVendored = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "ignore":
		cfg.Ignore = value
	case "extensions":
		cfg.Extensions = value
	case "only":
		cfg.Only = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns every supported environment variable with its description.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.help
	}
	return vars
}
