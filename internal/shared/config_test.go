package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	c, created, err := LoadOrCreateServerConfig(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "localhost", c.Host)
	assert.Equal(t, 3000, c.Port)
	assert.Equal(t, []string{"./json"}, c.JSONDirectories)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"host":"localhost","port":3000,"json_directories":["./json"]}`, string(b))
	assert.NotContains(t, string(b), "metrics_address")

	// second call reads the file it wrote
	c, created, err = LoadOrCreateServerConfig(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 3000, c.Port)
}

func TestLoadServerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	writeFile(t, path, `{
  "host": "0.0.0.0",
  "port": 8080,
  "json_directories": ["./a", "b/c"],
  "debug": true,
  "access_log_db": "/tmp/access.db"
}`)

	c, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", c.Host)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, []string{"./a", "b/c"}, c.JSONDirectories)
	assert.True(t, c.Debug)
	assert.False(t, c.LogJSON)
	assert.Equal(t, "/tmp/access.db", c.AccessLogDB)
	assert.Equal(t, "0.0.0.0:8080", c.Addr())
}

func TestLoadServerConfigWithoutExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serverconf")
	writeFile(t, path, `{"host":"127.0.0.1","port":0,"json_directories":[]}`)

	c, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", c.Addr())
	assert.Empty(t, c.JSONDirectories)
}

func TestLoadServerConfigErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"host": "localhost", "port": `},
		{"port out of range", `{"host":"localhost","port":70000,"json_directories":[]}`},
		{"negative port", `{"host":"localhost","port":-1,"json_directories":[]}`},
		{"empty host", `{"host":"","port":3000,"json_directories":[]}`},
		{"port not a number", `{"host":"localhost","port":"http","json_directories":[]}`},
		{"port not an integer", `{"host":"localhost","port":3000.9,"json_directories":[]}`},
		{"port as string digits", `{"host":"localhost","port":"3000","json_directories":[]}`},
		{"missing port", `{"host":"localhost","json_directories":[]}`},
		{"missing host", `{"port":3000,"json_directories":[]}`},
		{"missing json_directories", `{"host":"localhost","port":3000}`},
		{"null port", `{"host":"localhost","port":null,"json_directories":[]}`},
		{"json_directories as string", `{"host":"localhost","port":3000,"json_directories":"./json"}`},
		{"json_directories with number", `{"host":"localhost","port":3000,"json_directories":["./json",1]}`},
		{"host as number", `{"host":127,"port":3000,"json_directories":[]}`},
		{"debug as string", `{"host":"localhost","port":3000,"json_directories":[],"debug":"yes"}`},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "c"+string(rune('a'+i))+".json")
			writeFile(t, path, tt.content)
			_, err := LoadServerConfig(path)
			require.Error(t, err)
		})
	}
}

func TestLoadServerConfigReportsEveryMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"debug":true}`)

	_, err := LoadServerConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required key "host"`)
	assert.Contains(t, err.Error(), `missing required key "port"`)
	assert.Contains(t, err.Error(), `missing required key "json_directories"`)
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	_, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadServerConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"host":"localhost","port":3000,"json_directories":["./json"]}`)

	t.Setenv("JSONSERVE_PORT", "9090")
	t.Setenv("JSONSERVE_METRICS_ADDRESS", "127.0.0.1:9100")

	c, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Port)
	assert.Equal(t, "127.0.0.1:9100", c.MetricsAddress)
	assert.Equal(t, []string{"./json"}, c.JSONDirectories)
}

func TestLoadServerConfigEnvSuppliesRequiredKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"host":"localhost"}`)

	t.Setenv("JSONSERVE_PORT", "8081")
	t.Setenv("JSONSERVE_JSON_DIRECTORIES", "./a,./b")

	c, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, c.Port)
	assert.Equal(t, []string{"./a", "./b"}, c.JSONDirectories)
}

func TestLoadServerConfigEnvOverridesBadFileValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"host":"localhost","port":"http","json_directories":["./json"]}`)

	t.Setenv("JSONSERVE_PORT", "3001")

	c, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3001, c.Port)
}
