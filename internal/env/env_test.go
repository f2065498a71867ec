package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapEnv(t *testing.T) {
	e := NewFromMap(map[string]string{"CHATTER_SERVER_URL": "http://x"})
	require.Equal(t, "http://x", e.Get("CHATTER_SERVER_URL"))
	require.Empty(t, e.Get("MISSING"))
	require.Equal(t, []string{"CHATTER_SERVER_URL=http://x"}, e.Env())

	require.Nil(t, NewFromMap(nil).Env())
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CHATTER_TEST_A=from-file\nCHATTER_TEST_B=\"quoted\"\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("CHATTER_TEST_A", "from-env")
	t.Setenv("CHATTER_TEST_B", "")
	os.Unsetenv("CHATTER_TEST_B")

	require.NoError(t, LoadDotEnv())
	require.Equal(t, "from-env", os.Getenv("CHATTER_TEST_A"))
	require.Equal(t, "quoted", os.Getenv("CHATTER_TEST_B"))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, LoadDotEnv())
}
