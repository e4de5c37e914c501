package option

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlags(t *testing.T) {
	opt := &Option{}
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	opt.BindFlags(cmd.PersistentFlags())
	cmd.SetArgs([]string{"--config", "/tmp/certdesk.yaml", "--timeout", "7", "-v"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "/tmp/certdesk.yaml", opt.ConfigPath)
	assert.Equal(t, 7, opt.TimeoutSeconds)
	assert.True(t, opt.Verbose)
}

func TestGenerateConfig_FlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("certificateServiceUrl: http://certs.file\nappreciationServiceUrl: http://appr.file\n"), 0o644))

	opt := &Option{}
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	opt.BindFlags(cmd.Flags())
	cmd.SetArgs([]string{"--config", path, "--certificate-url", "http://certs.flag"})
	require.NoError(t, cmd.Execute())

	cfg, err := opt.GenerateConfig(cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, "http://certs.flag", cfg.CertificateServiceURL)
	assert.Equal(t, "http://appr.file", cfg.AppreciationServiceURL)
}

func TestGenerateConfig_RejectsNegativeTimeout(t *testing.T) {
	opt := &Option{}
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	opt.BindFlags(cmd.Flags())
	cmd.SetArgs([]string{"--timeout=-1"})
	require.NoError(t, cmd.Execute())

	_, err := opt.GenerateConfig(cmd.Flags())
	assert.Error(t, err)
}
