package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidingest/internal/procrun"
	"vidingest/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	cacheDir   string
	filesDir   string
	tools      *testsupport.FakeTools
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("VIDINGEST_CACHE_DIR", "")
	t.Setenv("VIDINGEST_FILES_DIR", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		cacheDir:   filepath.Join(base, "cache"),
		filesDir:   filepath.Join(base, "files"),
		tools:      &testsupport.FakeTools{DurationSec: 40},
	}
	content := fmt.Sprintf(`[paths]
cache_dir = %q
files_dir = %q
data_dir = %q
log_dir = %q

[cache]
auto_prune = false

[logging]
level = "error"
`, env.cacheDir, env.filesDir, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) writeVideo(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.baseDir, "videos", name)
	testsupport.WriteFile(t, path, 4096)
	return path
}

func runCLI(t *testing.T, runner procrun.Runner, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := buildRootCommand(runner)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
