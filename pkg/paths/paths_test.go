package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	work := t.TempDir()

	tests := []struct {
		name       string
		configFlag string
		env        string
		want       string
	}{
		{name: "default", want: filepath.Join(work, "config.toml")},
		{name: "from env", env: "conf/server.toml", want: filepath.Join(work, "conf", "server.toml")},
		{name: "flag wins over env", configFlag: "/etc/serverwrap.toml", env: "ignored.toml", want: "/etc/serverwrap.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfig, tt.env)

			p, err := New(work, tt.configFlag)
			require.NoError(t, err)
			assert.Equal(t, work, p.WorkDir())
			assert.Equal(t, tt.want, p.ConfigPath())
		})
	}
}

func TestNewUsesCurrentDirectory(t *testing.T) {
	t.Setenv(EnvConfig, "")
	cwd, err := os.Getwd()
	require.NoError(t, err)

	p, err := New("", "")
	require.NoError(t, err)
	assert.Equal(t, cwd, p.WorkDir())
}

func TestResolve(t *testing.T) {
	p := &Paths{workDir: "/srv/minecraft"}
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"mods", "/srv/minecraft/mods"},
		{"./config/../mods", "/srv/minecraft/mods"},
		{"/opt/mods/", "/opt/mods"},
		{"~/mods", filepath.Join(home, "mods")},
		{"~other/mods", "/srv/minecraft/~other/mods"},
		{"https://example.com/destinations.toml", "https://example.com/destinations.toml"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Resolve(tt.in))
		})
	}
}

func TestCacheRoot(t *testing.T) {
	cacheHome := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	xdg.Reload()

	p := &Paths{workDir: "/srv/minecraft"}
	assert.Equal(t, "/srv/minecraft/wrapper_cache", p.CacheRoot("wrapper_cache"))
	assert.Equal(t, filepath.Join(cacheHome, AppDirName), p.CacheRoot(""))
}
