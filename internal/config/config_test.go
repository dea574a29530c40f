package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ibew.json5")
	writeFile(t, path, `{
		// fewer workers for a polite run
		workers: 4,
		timeout: "30s",
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Workers = 4
	want.Timeout = "30s"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	d, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, d)
}

func TestLoad_LocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ibew.json5")
	writeFile(t, path, `{workers: 4, log_level: "debug", output: "base.xlsx"}`)
	writeFile(t, filepath.Join(dir, "ibew.local.json5"), `{workers: 2, membership_url: "http://localhost:8080/ibew"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "base.xlsx", cfg.Output)
	require.Equal(t, "http://localhost:8080/ibew", cfg.MembershipURL)
	require.Equal(t, Default().DirectoryURL, cfg.DirectoryURL)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json5"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing.json5")

	bad := filepath.Join(dir, "bad.json5")
	writeFile(t, bad, `{workers: `)
	_, err = Load(bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.json5")

	good := filepath.Join(dir, "good.json5")
	writeFile(t, good, `{}`)
	writeFile(t, filepath.Join(dir, "good.local.json5"), `[1, 2]`)
	_, err = Load(good)
	require.Error(t, err)
	require.Contains(t, err.Error(), "good.local.json5")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	writeFile(t, path, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLocalName(t *testing.T) {
	tests := map[string]string{
		"ibew.json5":         "ibew.local.json5",
		"conf/ibew.json":     "conf/ibew.local.json",
		"settings":           "settings.local",
		"/etc/a.b/ibew.json": "/etc/a.b/ibew.local.json",
	}
	for in, want := range tests {
		if got := localName(in); got != want {
			t.Errorf("localName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "one worker", modify: func(c *Config) { c.Workers = 1 }},
		{name: "zero workers", modify: func(c *Config) { c.Workers = 0 }, wantErr: "workers"},
		{name: "too many workers", modify: func(c *Config) { c.Workers = 11 }, wantErr: "workers"},
		{name: "bad timeout", modify: func(c *Config) { c.Timeout = "soon" }, wantErr: "timeout"},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = "-1s" }, wantErr: "timeout"},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log level"},
		{name: "relative directory url", modify: func(c *Config) { c.DirectoryURL = "ibew.org" }, wantErr: "directory_url"},
		{name: "csv output", modify: func(c *Config) { c.Output = "out.csv" }, wantErr: ".xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseStates(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{input: "NY", want: []string{"NY"}},
		{input: "ny,ca", want: []string{"NY", "CA"}},
		{input: " NY , CA ,", want: []string{"NY", "CA"}},
		{input: "NY,ny,CA,NY", want: []string{"NY", "CA"}},
		{input: "", wantErr: true},
		{input: " , ,", wantErr: true},
		{input: "NEW YORK", wantErr: true},
		{input: "NY,C4", wantErr: true},
		{input: "N", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStates(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseStates(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}
