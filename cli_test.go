package layerrenamer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	layerrenamer "github.com/thrawn01/layer-renamer"
)

func TestCLIIntegration(t *testing.T) {
	docPath := writeSampleDocument(t)

	tests := []struct {
		name        string
		args        []string
		expectError bool
	}{
		{
			name: "Help",
			args: []string{"layer-renamer", "-h"},
		},
		{
			name: "NoCommand",
			args: []string{"layer-renamer"},
		},
		{
			name: "ListCommand",
			args: []string{"layer-renamer", "--doc=" + docPath, "list", "--json"},
		},
		{
			name: "HighlightCommand",
			args: []string{"layer-renamer", "--doc=" + docPath, "highlight", "--group=Button"},
		},
		{
			name: "DumpCommand",
			args: []string{"layer-renamer", "--doc=" + docPath, "dump", "--node=1:2"},
		},
		{
			name: "RenameDryRun",
			args: []string{"layer-renamer", "--doc=" + docPath, "--dry-run", "rename", "--button=CTA", "--json"},
		},
		{
			name:        "InvalidCommand",
			args:        []string{"layer-renamer", "--doc=" + docPath, "invalid"},
			expectError: true,
		},
		{
			name:        "MissingDocument",
			args:        []string{"layer-renamer", "list"},
			expectError: true,
		},
		{
			name:        "MissingGroup",
			args:        []string{"layer-renamer", "--doc=" + docPath, "highlight"},
			expectError: true,
		},
		{
			name:        "BadCustomRename",
			args:        []string{"layer-renamer", "--doc=" + docPath, "rename", "--custom=Card"},
			expectError: true,
		},
		{
			name:        "UnknownDumpNode",
			args:        []string{"layer-renamer", "--doc=" + docPath, "dump", "--node=404"},
			expectError: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := layerrenamer.RunCmd(test.args, &layerrenamer.RunCmdOptions{Stdout: &stdout, Stderr: &stderr})
			if test.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCLIListJSON(t *testing.T) {
	docPath := writeSampleDocument(t)

	var stdout bytes.Buffer
	err := layerrenamer.RunCmd([]string{"layer-renamer", "--doc=" + docPath, "list", "--json", "--min-count=2"},
		&layerrenamer.RunCmdOptions{Stdout: &stdout, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)

	var instances []layerrenamer.UniqueInstance
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &instances))
	assert.Equal(t, []layerrenamer.UniqueInstance{{Name: "Button", Count: 2}}, instances)
}

func TestCLIRename(t *testing.T) {
	ctx := context.Background()
	docPath := writeSampleDocument(t)
	options := &layerrenamer.RunCmdOptions{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	t.Run("DryRunLeavesDocument", func(t *testing.T) {
		var stdout bytes.Buffer
		err := layerrenamer.RunCmd([]string{"layer-renamer", "--doc=" + docPath, "rename", "--dry-run", "--button=CTA"},
			&layerrenamer.RunCmdOptions{Stdout: &stdout, Stderr: &bytes.Buffer{}})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "DRY RUN MODE")
		assert.Contains(t, stdout.String(), "Renamed layers: 3")

		doc, err := layerrenamer.LoadDocument(ctx, docPath)
		require.NoError(t, err)
		node, _ := doc.FindByID("1:2")
		assert.Equal(t, "Primary", node.Name)
	})

	t.Run("WritesOutput", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "renamed.yaml")
		err := layerrenamer.RunCmd([]string{"layer-renamer", "--doc=" + docPath, "rename",
			"--button=CTA", "--custom=Card:Card layer", "--out=" + out}, options)
		require.NoError(t, err)

		doc, err := layerrenamer.LoadDocument(ctx, out)
		require.NoError(t, err)

		primary, _ := doc.FindByID("1:2")
		assert.Equal(t, "CTA", primary.Name)
		card, _ := doc.FindByID("1:4")
		assert.Equal(t, "Card layer", card.Name)
		tile, _ := doc.FindByID("1:6")
		assert.Equal(t, layerrenamer.ServiceTilesComponent, tile.Name)

		original, err := layerrenamer.LoadDocument(ctx, docPath)
		require.NoError(t, err)
		primary, _ = original.FindByID("1:2")
		assert.Equal(t, "Primary", primary.Name)
	})
}

func TestParseCustomRenames(t *testing.T) {
	rules, err := layerrenamer.ParseCustomRenames("Card:Tile, Badge : Pill,Empty:")
	require.NoError(t, err)
	assert.Equal(t, []layerrenamer.CustomRename{
		{Name: "Card", NewName: "Tile"},
		{Name: "Badge", NewName: "Pill"},
		{Name: "Empty", NewName: ""},
	}, rules)

	rules, err = layerrenamer.ParseCustomRenames("")
	require.NoError(t, err)
	assert.Empty(t, rules)

	_, err = layerrenamer.ParseCustomRenames("Card")
	assert.Error(t, err)
}

func startMCPServer(t *testing.T, docPath string) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	go func() {
		options := &layerrenamer.RunCmdOptions{
			MCPTransport: serverTransport,
			Stderr:       &bytes.Buffer{},
		}
		_ = layerrenamer.RunCmd([]string{"layer-renamer", "-mcp", "--doc=" + docPath}, options)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = session.Close()
	})
	return session
}

func TestMCPServerCapabilities(t *testing.T) {
	t.Run("MCPServerToolDiscovery", func(t *testing.T) {
		ctx := context.Background()
		session := startMCPServer(t, writeSampleDocument(t))

		err := session.Ping(ctx, nil)
		require.NoError(t, err)

		tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
		require.NoError(t, err)

		expectedTools := map[string]string{
			"fetch_instances":     "List component sets used on the current page with their instance counts",
			"rename_components":   "Rename component instances in the selection or current page",
			"highlight_instances": "Select every instance of a component set on the current page",
			"undo_rename":         "Restore the names changed by the last rename",
			"save_document":       "Write the document with its current layer names",
			"cancel":              "Close the renamer session",
		}

		foundTools := make(map[string]bool)
		for _, tool := range tools.Tools {
			if expectedDesc, expected := expectedTools[tool.Name]; expected {
				foundTools[tool.Name] = true
				assert.Equal(t, expectedDesc, tool.Description)
			} else {
				assert.Failf(t, "Unexpected tool found", "tool: %s", tool.Name)
			}
		}

		for toolName := range expectedTools {
			assert.True(t, foundTools[toolName])
		}

		assert.Len(t, tools.Tools, 6)
	})
}

func TestMCPRenameAndUndo(t *testing.T) {
	ctx := context.Background()
	docPath := writeSampleDocument(t)
	session := startMCPServer(t, docPath)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "rename_components",
		Arguments: map[string]any{
			"button_name":        "CTA",
			"service_tiles_name": "Tile",
			"list_item_name":     "Row",
		},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "save_document",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	doc, err := layerrenamer.LoadDocument(ctx, docPath)
	require.NoError(t, err)
	primary, _ := doc.FindByID("1:2")
	assert.Equal(t, "CTA", primary.Name)

	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "undo_rename",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "save_document",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	doc, err = layerrenamer.LoadDocument(ctx, docPath)
	require.NoError(t, err)
	primary, _ = doc.FindByID("1:2")
	assert.Equal(t, "Primary", primary.Name)
}

func TestFetchInstancesToolMaxResults(t *testing.T) {
	ctx := context.Background()
	session, _, _ := newTestSession(t)

	limit := 1
	_, result, err := layerrenamer.FetchInstancesTool(ctx, nil, layerrenamer.FetchInstancesParams{MaxResults: &limit}, session)
	require.NoError(t, err)
	assert.Equal(t, []layerrenamer.UniqueInstance{{Name: "Button", Count: 2}}, result)

	negative := -1
	assert.NotPanics(t, func() {
		_, _, err = layerrenamer.FetchInstancesTool(ctx, nil, layerrenamer.FetchInstancesParams{MaxResults: &negative}, session)
	})
	assert.ErrorContains(t, err, "max_results cannot be negative")
}
