package kindle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("KINDLE_COOKIES", testCookieString)
	t.Setenv("KINDLE_DEVICE_TOKEN", "device-token")
	t.Setenv("KINDLE_CLIENT_VERSION", "20000100")
	t.Setenv("TLS_SERVER_URL", "http://localhost:8080")
	t.Setenv("TLS_SERVER_API_KEY", "secret")
	t.Setenv("KINDLE_TLS_PROFILE", "chrome_133")
	t.Setenv("KINDLE_TIMEOUT", "45s")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, testCookieString, cfg.CookieString)
	assert.Equal(t, "device-token", cfg.DeviceToken)
	assert.Equal(t, "20000100", cfg.ClientVersion)
	assert.Equal(t, TLSServerConfig{URL: "http://localhost:8080", APIKey: "secret"}, cfg.TLSServer)
	assert.Equal(t, "chrome_133", cfg.Profile)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.validate())
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"KINDLE_TIMEOUT", "KINDLE_TLS_PROFILE", "TLS_SERVER_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Profile)
	assert.Equal(t, DefaultProfile.UserAgent, cfg.userAgent())
}

func TestLoadConfigFromFile(t *testing.T) {
	keys := []string{"KINDLE_COOKIES", "KINDLE_DEVICE_TOKEN"}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Cleanup(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	})

	path := filepath.Join(t.TempDir(), "kindle.env")
	contents := "KINDLE_COOKIES=\"" + testCookieString + "\"\nKINDLE_DEVICE_TOKEN=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DeviceToken)

	cookies, err := cfg.resolveCookies()
	require.NoError(t, err)
	assert.Equal(t, "Atza|token", cookies.AtMain)
}

func TestLoadConfigBadTimeout(t *testing.T) {
	t.Setenv("KINDLE_TIMEOUT", "soon")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestConfigUserAgent(t *testing.T) {
	assert.Equal(t, "custom", Config{UserAgent: "custom"}.userAgent())
	assert.Equal(t, Chrome143UserAgent, Config{Profile: "chrome_143"}.userAgent())
	// tls-client profiles carry no headers of their own
	assert.Equal(t, DefaultProfile.UserAgent, Config{Profile: "chrome_133"}.userAgent())
}

func TestConfigNewTransport(t *testing.T) {
	cookies := RequiredCookies{AtMain: "a", SessionID: "b", UbidMain: "c", XMain: "d"}

	t.Run("forwarder", func(t *testing.T) {
		cfg := Config{TLSServer: TLSServerConfig{URL: "http://localhost:8080", APIKey: "k"}, Profile: "chrome_143"}
		transport, err := cfg.newTransport(cookies, NopLogger{})
		require.NoError(t, err)

		fwd, ok := transport.(*ForwardTransport)
		require.True(t, ok)
		assert.Equal(t, "chrome_143", fwd.identifier)
	})

	t.Run("direct", func(t *testing.T) {
		transport, err := Config{}.newTransport(cookies, NopLogger{})
		require.NoError(t, err)
		assert.IsType(t, &DirectTransport{}, transport)
	})

	t.Run("direct with bad proxy file", func(t *testing.T) {
		cfg := Config{ProxyFile: filepath.Join(t.TempDir(), "none.txt")}
		_, err := cfg.newTransport(cookies, NopLogger{})

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "proxyFile", cfgErr.Field)
	})

	t.Run("factory receives cookies", func(t *testing.T) {
		var got RequiredCookies
		cfg := Config{TransportFactory: func(c RequiredCookies, _ Config) (Transport, error) {
			got = c
			return newStubTransport(), nil
		}}
		_, err := cfg.newTransport(cookies, NopLogger{})
		require.NoError(t, err)
		assert.Equal(t, cookies, got)
	})
}
