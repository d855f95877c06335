package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadJSONArray(t *testing.T) {
	path := writeFile(t, "channels.json", `["https://t.me/durov", "+AbC123", "  ", "joinchat/XyZ"]`)

	refs, err := NewRepository().Load(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.ChannelReference{"https://t.me/durov", "+AbC123", "joinchat/XyZ"}, refs)
}

func TestLoadYAMLList(t *testing.T) {
	path := writeFile(t, "channels.yaml", "- durov\n- \"+hash\"\n")

	refs, err := NewRepository().Load(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.ChannelReference{"durov", "+hash"}, refs)
}

func TestLoadRejectsObject(t *testing.T) {
	path := writeFile(t, "channels.json", `{"channels": ["a"]}`)

	_, err := NewRepository().Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewRepository().Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
