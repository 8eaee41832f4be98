package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	require.NoError(t, config.Validate())

	assert.Contains(t, config.Extensions, ".cs")
	assert.Len(t, config.Rules, 4)
	assert.Equal(t, "utf-8", config.Encoding.Primary)
	assert.Equal(t, []string{"gbk"}, config.Encoding.Fallback)
	assert.Equal(t, WriteBackSource, config.Encoding.WriteBack)
}

func TestDefaultConfigYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := DefaultConfigYAML()
	require.NoError(t, err)

	loaded, err := LoadFromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	t.Parallel()

	yamlContent := `extensions: [".go", ".CS"]
rules:
  - name: println
    match: ["fmt.Println(", "println("]
encoding:
  write_back: primary
`

	config, err := LoadFromYAML([]byte(yamlContent))
	require.NoError(t, err)

	assert.Equal(t, []string{".go", ".CS"}, config.Extensions)
	require.Len(t, config.Rules, 1)
	assert.Equal(t, []string{"fmt.Println(", "println("}, config.Rules[0].Match)
	assert.Equal(t, WriteBackPrimary, config.Encoding.WriteBack)
	// untouched keys keep defaults
	assert.Equal(t, "utf-8", config.Encoding.Primary)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadFromYAMLValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty extensions", "extensions: []\n", "at least one extension"},
		{"extension without dot", "extensions: [cs]\n", "must start with '.'"},
		{"no rules", "rules: []\n", "at least one rule"},
		{"rule without match", "rules:\n  - name: broken\n", "invalid rules"},
		{"unknown encoding", "encoding:\n  primary: klingon\n", "invalid encoding"},
		{"unknown fallback", "encoding:\n  fallback: [nope]\n", "invalid encoding"},
		{"bad write back", "encoding:\n  write_back: sideways\n", "invalid write_back"},
		{"bad exclude glob", "exclude: [\"[\"]\n", "invalid exclude pattern"},
		{"malformed yaml", "rules: [\n", "failed to parse config"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadFromYAML([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.yml", []byte("exclude: [\"bin/**\"]\n"), 0o600))

	config, err := Load(fs, "/cfg/config.yml", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"bin/**"}, config.Exclude)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	config, err := Load(fs, "/nope/config.yml", true)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	_, err = Load(fs, "/nope/config.yml", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestFilterRulesNamesUnnamedRules(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	config.Rules = []Rule{{Match: []string{"print("}}}

	rules := config.FilterRules()
	require.Len(t, rules, 1)
	assert.Equal(t, "rule-1", rules[0].Name)

	rs, err := config.RuleSet()
	require.NoError(t, err)
	_, ok := rs.Match("  print(x)\n")
	assert.True(t, ok)
}

func TestLoadFromYAMLEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"_ENCODING_PRIMARY", "windows-1252")
	t.Setenv(EnvPrefix+"_ENCODING_FALLBACK", "gbk,shift_jis")
	t.Setenv(EnvPrefix+"_LOGGING_LEVEL", "debug")

	config, err := LoadFromYAML([]byte("logging:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "windows-1252", config.Encoding.Primary)
	assert.Equal(t, []string{"gbk", "shift_jis"}, config.Encoding.Fallback)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, WriteBackSource, config.Encoding.WriteBack)
}
