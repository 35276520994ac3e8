package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dyluth/sortvis/internal/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputJSON(t *testing.T) {
	infos := []AlgorithmInfo{
		{Name: algo.NameHeap, Description: "heap"},
		{Name: algo.NameComb, Description: "comb"},
	}

	var buf bytes.Buffer
	require.NoError(t, outputJSON(&buf, infos))

	var decoded []AlgorithmInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, infos, decoded)
}

func TestOutputTable(t *testing.T) {
	infos := []AlgorithmInfo{
		{Name: algo.NameGnome, Description: algo.Describe(algo.NameGnome)},
	}

	var buf bytes.Buffer
	require.NoError(t, outputTable(&buf, infos))
	assert.Contains(t, buf.String(), algo.NameGnome)
	assert.Contains(t, buf.String(), algo.Describe(algo.NameGnome))
}

func TestListCommand(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list", "--json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		listJSON = false
	})

	require.NoError(t, rootCmd.Execute())

	var decoded []AlgorithmInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 8)
	assert.Equal(t, algo.NameBubble, decoded[0].Name)
	for _, info := range decoded {
		assert.NotEmpty(t, info.Description, info.Name)
	}
}
