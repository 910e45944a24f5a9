package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, root.Execute())
	return out.String()
}

func TestExportText(t *testing.T) {
	path := writeInput(t, "id;name\n1;ann\n2;bob\n")
	out := execute(t, "export", path, "--page-rows", "1")
	assert.Equal(t, "1\tann\n2\tbob\n", out)
}

func TestExportHTML(t *testing.T) {
	path := writeInput(t, "id\n1\n")
	out := execute(t, "export", path, "--format", "html")
	assert.Contains(t, out, "<td>1</td>")
}

func TestDictJSON(t *testing.T) {
	path := writeInput(t, "id,name\n1,ann\n")
	out := execute(t, "dict", path, "--json")
	var got struct {
		Variables []struct {
			Name  string `json:"name"`
			Width int    `json:"width"`
		} `json:"variables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Variables, 2)
	assert.Equal(t, "name", got.Variables[1].Name)
	assert.Equal(t, 3, got.Variables[1].Width)
}

func TestImportPrintsVariablesAndCases(t *testing.T) {
	path := writeInput(t, "id,name\n1,ann\n")
	out := execute(t, "import", path, "--stats")
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "Name"))
	assert.Contains(t, out, "Numeric")
	assert.Contains(t, out, "ann")
	assert.Contains(t, out, "pages=")
}

func TestVersion(t *testing.T) {
	out := execute(t, "version")
	assert.Contains(t, out, "casesheet v")
}
