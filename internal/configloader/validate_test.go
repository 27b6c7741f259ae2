package configloader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/spanedit/internal/configloader"
	"github.com/yaklabco/spanedit/pkg/config"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*config.Config)
		field  string
	}{
		{"engine", func(c *config.Config) { c.Engine = "sed" }, "engine"},
		{"mode", func(c *config.Config) { c.Mode = "paragraph" }, "mode"},
		{"newline", func(c *config.Config) { c.Newline = "nel" }, "newline"},
		{"flavor", func(c *config.Config) { c.Flavor = "rst" }, "flavor"},
		{"format", func(c *config.Config) { c.Format = "sarif" }, "format"},
		{"jobs", func(c *config.Config) { c.Jobs = -1 }, "jobs"},
		{"backup mode", func(c *config.Config) { c.Backups.Mode = "git" }, "backups.mode"},
		{"ignore glob", func(c *config.Config) { c.Ignore = []string{"ok/**", "[oops"} }, "ignore[1]"},
		{"rule", func(c *config.Config) {
			c.Rules = []config.RuleConfig{{Pattern: "a"}, {Pattern: "(a)", Set: map[string]string{"9": "x"}}}
		}, "rules[1]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			tc.modify(cfg)

			result := configloader.Validate(cfg)
			require.False(t, result.Valid())
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tc.field, result.Errors[0].Field)
		})
	}
}

func TestValidate_RulesWaitForValidDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Engine = "sed"
	cfg.Rules = []config.RuleConfig{{Pattern: "a"}}

	result := configloader.Validate(cfg)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "engine", result.Errors[0].Field)
}

func TestValidate_Warnings(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Rules = []config.RuleConfig{
		{Name: "x", Pattern: "a"},
		{Name: "x", Pattern: "b"},
	}
	cfg.Only = []string{"x", "y"}
	cfg.Write = true
	cfg.DryRun = true

	result := configloader.Validate(cfg)
	assert.True(t, result.Valid())
	assert.True(t, result.HasWarnings())

	var fields []string
	for _, w := range result.Warnings {
		fields = append(fields, w.Field)
	}
	assert.Equal(t, []string{"dry_run", "rules[1].name", "only"}, fields)
}

func TestValidateWithFile(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Jobs = -2

	result := configloader.ValidateWithFile(cfg, ".spanedit.yml")
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ".spanedit.yml: jobs: jobs must be >= 0 (0 means auto)", result.Errors[0].Error())
	assert.Equal(t, []string{"error: .spanedit.yml: jobs: jobs must be >= 0 (0 means auto)"}, result.AllMessages())
}

func TestValidate_Nil(t *testing.T) {
	t.Parallel()

	assert.True(t, configloader.Validate(nil).Valid())
}

func TestIsValidHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, configloader.IsValidFlavor(config.FlavorGFM))
	assert.False(t, configloader.IsValidFlavor("rst"))
	assert.True(t, configloader.IsValidFormat(config.FormatDiff))
	assert.False(t, configloader.IsValidFormat("table"))
	assert.True(t, configloader.IsValidBackupMode("none"))
	assert.False(t, configloader.IsValidBackupMode("git"))
}

func TestEnvVars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SPANEDIT_DRY_RUN", configloader.GetEnvVarName("dry_run"))
	assert.Empty(t, configloader.GetEnvVarName("nope"))

	vars := configloader.ListEnvVars()
	assert.Contains(t, vars, "SPANEDIT_ENGINE")
	assert.Contains(t, vars, "SPANEDIT_ONLY")

	cfg := config.NewConfig()
	err := configloader.ApplyEnv(cfg, func(key string) string {
		switch key {
		case "SPANEDIT_MODE":
			return "lines"
		case "SPANEDIT_EXTENSIONS":
			return ".md,.txt"
		case "SPANEDIT_INCLUDE_VENDORED":
			return "1"
		}
		return ""
	})
	require.NoError(t, err)
	assert.Equal(t, config.ModeLines, cfg.Mode)
	assert.Equal(t, []string{".md", ".txt"}, cfg.Extensions)
	assert.True(t, cfg.IncludeVendored)

	err = configloader.ApplyEnv(cfg, func(key string) string {
		if key == "SPANEDIT_JOBS" {
			return "many"
		}
		return ""
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid integer for SPANEDIT_JOBS")
}
