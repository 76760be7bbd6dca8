package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskPatch struct {
	Name        Field[string]   `json:"name"`
	Description Field[string]   `json:"description"`
	Media       Field[[]string] `json:"media"`
}

func TestFieldDistinguishesAbsentFromNull(t *testing.T) {
	var p taskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"pick cube","description":null}`), &p))

	assert.True(t, p.Name.Set)
	assert.False(t, p.Name.Null)
	assert.Equal(t, "pick cube", p.Name.Value)

	assert.True(t, p.Description.Set)
	assert.True(t, p.Description.Null)
	assert.Nil(t, p.Description.Ptr())

	assert.False(t, p.Media.Set)
}

func TestPutOnlyRecordsPresentKeys(t *testing.T) {
	var p taskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":null,"media":["gs://b/a.jpg"]}`), &p))

	u := Updates{}
	Put(u, "name", p.Name)
	Put(u, "description", p.Description)
	PutWith(u, "media", p.Media, func(v []string) interface{} { return len(v) })

	_, hasName := u["name"]
	assert.False(t, hasName)
	desc, hasDesc := u["description"]
	assert.True(t, hasDesc)
	assert.Nil(t, desc)
	assert.Equal(t, 1, u["media"])
}

func TestFieldWrongTypeFails(t *testing.T) {
	var p taskPatch
	err := json.Unmarshal([]byte(`{"name":42}`), &p)
	assert.Error(t, err)
}
