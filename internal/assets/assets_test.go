package assets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexJSONIsValidJSON(t *testing.T) {
	b := Seed{}.IndexJSON()
	require.NotEmpty(t, b)
	assert.True(t, json.Valid(b))
}

func TestIndexJSONReturnsCopy(t *testing.T) {
	b := Seed{}.IndexJSON()
	b[0] = 'x'
	assert.NotEqual(t, b[0], Seed{}.IndexJSON()[0])
}
