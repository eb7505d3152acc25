// FILE: lixenwraith/confvar/source_test.go
package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnvironmentSource tests applying environment variables
func TestEnvironmentSource(t *testing.T) {
	t.Run("DefaultTransform", func(t *testing.T) {
		transform := DefaultEnvTransform("APP_")
		assert.Equal(t, "APP_SERVER_PORT", transform("server.port"))
		assert.Equal(t, "APP_FEATURE_FLAGS_ENABLE_DEBUG", transform("feature-flags.enable-debug"))
		assert.Equal(t, "DEBUG", DefaultEnvTransform("")("debug"))
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		reg := New()
		port := MustDeclare(reg, "server.port", "", 8080)
		hosts := MustDeclare(reg, "server.hosts", "", []string{"a"})
		timeout := MustDeclare(reg, "server.timeout", "", time.Second)

		t.Setenv("ENVTEST_SERVER_PORT", "9090")
		t.Setenv("ENVTEST_SERVER_HOSTS", "[x, y]")

		require.NoError(t, reg.ApplyEnv("ENVTEST_"))
		assert.Equal(t, 9090, port.Value())
		assert.Equal(t, []string{"x", "y"}, hosts.Value())
		assert.Equal(t, time.Second, timeout.Value())
	})

	t.Run("InvalidValueIsolated", func(t *testing.T) {
		reg := New()
		port := MustDeclare(reg, "server.port", "", 8080)
		host := MustDeclare(reg, "server.host", "", "localhost")

		t.Setenv("ENVBAD_SERVER_PORT", "not-a-port")
		t.Setenv("ENVBAD_SERVER_HOST", "example.com")

		err := reg.ApplyEnv("ENVBAD_")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidLiteral)
		assert.Contains(t, err.Error(), "ENVBAD_SERVER_PORT")
		assert.Equal(t, 8080, port.Value())
		assert.Equal(t, "example.com", host.Value())
	})

	t.Run("CustomTransform", func(t *testing.T) {
		reg := New()
		port := MustDeclare(reg, "server.port", "", 8080)
		t.Setenv("CUSTOM-server-port", "7070")

		err := reg.ApplyEnvWith(func(name string) string {
			return "CUSTOM-" + strings.ReplaceAll(name, ".", "-")
		})
		require.NoError(t, err)
		assert.Equal(t, 7070, port.Value())
	})

	t.Run("EmptyValueIsApplied", func(t *testing.T) {
		reg := New()
		name := MustDeclare(reg, "name", "", "default")
		t.Setenv("ENVEMPTY_NAME", "")
		require.NoError(t, reg.ApplyEnv("ENVEMPTY_"))
		assert.Equal(t, "", name.Value())
	})

	t.Run("DiscoverEnv", func(t *testing.T) {
		reg := New()
		MustDeclare(reg, "server.port", "", 8080)
		MustDeclare(reg, "server.host", "", "localhost")
		t.Setenv("DISC_SERVER_PORT", "1")

		assert.Equal(t, map[string]string{"server.port": "DISC_SERVER_PORT"}, reg.DiscoverEnv("DISC_"))
	})
}

// TestViperSource tests documents taken from a viper instance
func TestViperSource(t *testing.T) {
	t.Run("Set", func(t *testing.T) {
		reg := New()
		port := MustDeclare(reg, "server.port", "", 8080)
		hosts := MustDeclare(reg, "server.hosts", "", []string{})

		v := viper.New()
		v.Set("server.port", 7070)
		v.Set("server.hosts", []string{"x", "y"})
		v.Set("ignored.key", true)

		require.NoError(t, reg.ApplyViper(v))
		assert.Equal(t, 7070, port.Value())
		assert.Equal(t, []string{"x", "y"}, hosts.Value())
		assert.Equal(t, 2, reg.Len())
	})

	t.Run("ReadConfig", func(t *testing.T) {
		reg := New()
		flags := MustDeclare(reg, "features", "", map[string]bool{})
		timeout := MustDeclare(reg, "server.timeout", "", time.Second)

		v := viper.New()
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString("server:\n  timeout: 3s\nfeatures:\n  a: true\n")))

		require.NoError(t, reg.ApplyViper(v))
		assert.Equal(t, 3*time.Second, timeout.Value())
		assert.Equal(t, map[string]bool{"a": true}, flags.Value())
	})

	t.Run("Nil", func(t *testing.T) {
		_, err := FromViper(nil)
		assert.Error(t, err)
	})
}
