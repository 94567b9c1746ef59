package layerrenamer_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	layerrenamer "github.com/thrawn01/layer-renamer"
)

func TestDefaultValidator_ValidateRules(t *testing.T) {
	validator := layerrenamer.NewDefaultValidator()

	tests := []struct {
		name           string
		rules          []layerrenamer.CustomRename
		expectedIssues []string
	}{
		{
			name:  "NoRules",
			rules: nil,
		},
		{
			name:  "ValidRules",
			rules: []layerrenamer.CustomRename{{Name: "Card", NewName: "Tile"}, {Name: "Badge", NewName: "Pill"}},
		},
		{
			name:           "EmptyName",
			rules:          []layerrenamer.CustomRename{{Name: "", NewName: "Tile"}},
			expectedIssues: []string{"will never match"},
		},
		{
			name:           "EmptyNewName",
			rules:          []layerrenamer.CustomRename{{Name: "Card", NewName: ""}},
			expectedIssues: []string{"will be ignored"},
		},
		{
			name: "EmptyNewNameDoesNotShadow",
			rules: []layerrenamer.CustomRename{
				{Name: "Card", NewName: ""},
				{Name: "Card", NewName: "Tile"},
			},
			expectedIssues: []string{"will be ignored"},
		},
		{
			name: "ShadowedRule",
			rules: []layerrenamer.CustomRename{
				{Name: "Card", NewName: "First"},
				{Name: "Card", NewName: "Second"},
			},
			expectedIssues: []string{"shadowed by rule 1"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := validator.ValidateRules(test.rules)

			assert.True(t, result.IsValid)
			assert.Len(t, result.Issues, len(test.expectedIssues))
			for _, expected := range test.expectedIssues {
				found := false
				for _, issue := range result.Issues {
					if strings.Contains(issue, expected) {
						found = true
						break
					}
				}
				assert.True(t, found, "expected issue containing %q, got %v", expected, result.Issues)
			}
		})
	}
}

func TestDefaultValidator_ValidatePath(t *testing.T) {
	validator := layerrenamer.NewDefaultValidator()

	tests := []struct {
		name        string
		path        string
		expectError bool
	}{
		{name: "AbsolutePath", path: "/tmp/design.yaml"},
		{name: "RelativePath", path: "designs/home.yaml"},
		{name: "EmptyPath", path: "", expectError: true},
		{name: "Traversal", path: "../secret.yaml", expectError: true},
		{name: "NestedTraversal", path: "/tmp/../etc/design.yaml", expectError: true},
		{name: "DotsInName", path: "/tmp/design..v2.yaml"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validator.ValidatePath(test.path)
			if test.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultValidator_ValidateConfig(t *testing.T) {
	validator := layerrenamer.NewDefaultValidator()

	assert.NoError(t, validator.ValidateConfig(layerrenamer.DefaultConfig()))
	assert.Error(t, validator.ValidateConfig(nil))

	negative := layerrenamer.DefaultConfig()
	negative.NotificationTimeout = -time.Second
	assert.Error(t, validator.ValidateConfig(negative))

	badLevel := layerrenamer.DefaultConfig()
	badLevel.LogLevel = "chatty"
	assert.Error(t, validator.ValidateConfig(badLevel))
}

func TestLoadConfig(t *testing.T) {
	config, err := layerrenamer.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, layerrenamer.DefaultConfig(), config)

	path := filepath.Join(t.TempDir(), "renamer.yaml")
	content := `button_name: CTA
notification_timeout: 5s
log_level: debug
custom_renames:
  - name: Card
    new_name: Tile card
`
	require.NoError(t, os.WriteFile(path, []byte(content), layerrenamer.DefaultFilePermissions))

	config, err = layerrenamer.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "CTA", config.ButtonName)
	assert.Equal(t, layerrenamer.ServiceTilesComponent, config.ServiceTilesName)
	assert.Equal(t, 5*time.Second, config.NotificationTimeout)
	assert.Equal(t, []layerrenamer.CustomRename{{Name: "Card", NewName: "Tile card"}}, config.CustomRenames)

	req := config.RenameRequest()
	assert.Equal(t, "CTA", req.ButtonName)
	assert.Equal(t, layerrenamer.ListItemComponent, req.ListItemName)
	assert.Len(t, req.CustomRenames, 1)

	_, err = layerrenamer.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
