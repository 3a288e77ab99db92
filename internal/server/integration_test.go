package server

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonserve/internal/assets"
	"jsonserve/internal/scanner"
)

func TestScannedDirectoriesAreServed(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.Mkdir("json", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("json", "index.json"), []byte(`{"a":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join("json", "widgets.json"), []byte(`{"x":2}`), 0o644))

	table, err := scanner.New(assets.Seed{}, log.NewNopLogger()).Scan([]string{"./json", "./generated"})
	require.NoError(t, err)
	h := NewHandler(&API{Store: NewStore(table)})

	resp := doRequest(t, h, http.MethodGet, "/json", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"a":1}`, readBody(t, resp))

	resp = doRequest(t, h, http.MethodGet, "/json/widgets", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"x":2}`, readBody(t, resp))

	resp = doRequest(t, h, http.MethodGet, "/json/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, readBody(t, resp))

	seeded, err := os.ReadFile(filepath.Join("generated", "index.json"))
	require.NoError(t, err)
	assert.Equal(t, assets.Seed{}.IndexJSON(), seeded)

	resp = doRequest(t, h, http.MethodGet, "/generated", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(seeded), readBody(t, resp))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
