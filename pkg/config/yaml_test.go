package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/spanedit/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("empty config", func(t *testing.T) {
		c := &config.Config{}
		clone := c.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, c, clone)
	})

	t.Run("deep copies rules", func(t *testing.T) {
		whole := "x"
		enabled := true
		original := &config.Config{
			Rules: []config.RuleConfig{{
				Name:    "r",
				Pattern: "a",
				Set:     map[string]string{"1": "b"},
				Whole:   &whole,
				Enabled: &enabled,
			}},
		}

		clone := original.Clone()
		require.Len(t, clone.Rules, 1)

		clone.Rules[0].Set["1"] = "changed"
		*clone.Rules[0].Whole = "changed"
		*clone.Rules[0].Enabled = false
		clone.Rules[0].Name = "changed"

		assert.Equal(t, "b", original.Rules[0].Set["1"])
		assert.Equal(t, "x", *original.Rules[0].Whole)
		assert.True(t, *original.Rules[0].Enabled)
		assert.Equal(t, "r", original.Rules[0].Name)
	})

	t.Run("deep copies slices", func(t *testing.T) {
		original := &config.Config{
			Ignore:     []string{"vendor/**"},
			Extensions: []string{".md"},
			Only:       []string{"r"},
		}

		clone := original.Clone()
		clone.Ignore[0] = "changed"
		clone.Extensions[0] = "changed"
		clone.Only[0] = "changed"

		assert.Equal(t, "vendor/**", original.Ignore[0])
		assert.Equal(t, ".md", original.Extensions[0])
		assert.Equal(t, "r", original.Only[0])
	})

	t.Run("preserves CLI-only fields", func(t *testing.T) {
		original := config.NewConfig()
		original.Write = true
		original.DryRun = true
		original.Jobs = 3
		original.Format = config.FormatJSON
		original.NoBackups = true

		clone := original.Clone()
		assert.Equal(t, original, clone)
	})
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	whole := "${2}-${1}"
	original := config.NewConfig()
	original.Mode = config.ModeLines
	original.Ignore = []string{"vendor/**"}
	original.Rules = []config.RuleConfig{
		{Name: "swap", Pattern: `(\w+)-(\w+)`, Whole: &whole},
		{Name: "upper", Pattern: `(?P<w>x)`, Set: map[string]string{"w": "X"}, SkipCode: true},
	}
	original.Write = true

	data, err := original.ToYAML()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "write", "CLI-only fields are not serialized")

	parsed, err := config.FromYAML(data)
	require.NoError(t, err)

	original.Write = false
	original.Format = ""
	assert.Equal(t, original, parsed)
}

func TestConfigToYAMLWithHeader(t *testing.T) {
	cfg := config.NewConfig()

	data, err := cfg.ToYAMLWithHeader("# header")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# header\n\n"))

	plain, err := cfg.ToYAMLWithHeader("")
	require.NoError(t, err)
	direct, err := cfg.ToYAML()
	require.NoError(t, err)
	assert.Equal(t, direct, plain)
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("rules: {not: [a list"))
	assert.Error(t, err)
}

func TestGenerateTemplate(t *testing.T) {
	t.Run("yaml template parses", func(t *testing.T) {
		for _, examples := range []bool{false, true} {
			data, err := config.GenerateTemplate(config.TemplateOptions{Format: "yaml", Examples: examples})
			require.NoError(t, err)

			cfg, err := config.FromYAML(data)
			require.NoError(t, err)
			assert.Equal(t, "re2", cfg.Engine)
			assert.Equal(t, config.ModeWhole, cfg.Mode)
			if examples {
				require.Len(t, cfg.Rules, 2)
				assert.Equal(t, "iso-dates", cfg.Rules[0].Name)
				require.NotNil(t, cfg.Rules[0].Whole)
				assert.Equal(t, "${year}-${month}-${day}", *cfg.Rules[0].Whole)
				assert.True(t, cfg.Rules[1].SkipCode)
			} else {
				assert.Empty(t, cfg.Rules)
			}
		}
	})

	t.Run("json template is valid jsonc", func(t *testing.T) {
		data, err := config.GenerateTemplate(config.TemplateOptions{Format: "json", Examples: true})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "// spanedit configuration"))

		standard, err := hujson.Standardize(data)
		require.NoError(t, err)

		var cfg config.Config
		require.NoError(t, yaml.Unmarshal(standard, &cfg))
		require.Len(t, cfg.Rules, 2)
		assert.Equal(t, map[string]string{"scheme": "https"}, cfg.Rules[1].Set)
	})
}
