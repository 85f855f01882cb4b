package whisper

// Notes:
// - White-box testing (same package) to inject mock fileReader and envProvider
// - Real files via t.TempDir() for CheckModel with the default reader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type fakeInfo struct {
	name string
	size int64
	dir  bool
}

func (f fakeInfo) Name() string { return f.name }
func (f fakeInfo) Size() int64  { return f.size }
func (f fakeInfo) Mode() fs.FileMode {
	if f.dir {
		return fs.ModeDir | 0755
	}
	return 0755
}
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.dir }
func (f fakeInfo) Sys() any           { return nil }

type mockFileReader struct {
	files map[string]fakeInfo
}

func (m *mockFileReader) Stat(name string) (os.FileInfo, error) {
	if info, ok := m.files[name]; ok {
		return info, nil
	}
	return nil, os.ErrNotExist
}

type mockEnv struct {
	vars map[string]string
	path map[string]string // binary name -> resolved path
}

func (m *mockEnv) Getenv(key string) string { return m.vars[key] }

func (m *mockEnv) LookPath(file string) (string, error) {
	if p, ok := m.path[file]; ok {
		return p, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

// ---------------------------------------------------------------------------
// TestResolver_Resolve - Precedence: explicit, env var, PATH
// ---------------------------------------------------------------------------

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	files := map[string]fakeInfo{
		"/opt/whisper/whisper-cli": {name: "whisper-cli", size: 1},
		"/env/whisper-cli":         {name: "whisper-cli", size: 1},
		"/opt/whisper":             {name: "whisper", dir: true},
	}

	tests := []struct {
		name     string
		explicit string
		vars     map[string]string
		path     map[string]string
		want     string
		wantErr  bool
	}{
		{
			name:     "explicit path wins",
			explicit: "/opt/whisper/whisper-cli",
			vars:     map[string]string{EnvBinaryPath: "/env/whisper-cli"},
			path:     map[string]string{"whisper-cli": "/usr/bin/whisper-cli"},
			want:     "/opt/whisper/whisper-cli",
		},
		{
			name:     "explicit path missing is an error",
			explicit: "/missing/whisper-cli",
			path:     map[string]string{"whisper-cli": "/usr/bin/whisper-cli"},
			wantErr:  true,
		},
		{
			name:     "explicit directory is an error",
			explicit: "/opt/whisper",
			wantErr:  true,
		},
		{
			name: "env var before PATH",
			vars: map[string]string{EnvBinaryPath: "/env/whisper-cli"},
			path: map[string]string{"whisper-cli": "/usr/bin/whisper-cli"},
			want: "/env/whisper-cli",
		},
		{
			name:    "env var set but missing is an error",
			vars:    map[string]string{EnvBinaryPath: "/nope"},
			path:    map[string]string{"whisper-cli": "/usr/bin/whisper-cli"},
			wantErr: true,
		},
		{
			name: "whisper-cli preferred in PATH",
			path: map[string]string{"whisper-cli": "/usr/bin/whisper-cli", "whisper-cpp": "/usr/bin/whisper-cpp"},
			want: "/usr/bin/whisper-cli",
		},
		{
			name: "legacy whisper-cpp name",
			path: map[string]string{"whisper-cpp": "/usr/local/bin/whisper-cpp"},
			want: "/usr/local/bin/whisper-cpp",
		},
		{
			name:    "nothing found",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewResolver(
				WithFileReader(&mockFileReader{files: files}),
				WithEnvProvider(&mockEnv{vars: tt.vars, path: tt.path}),
			)

			got, err := r.Resolve(tt.explicit)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Resolve(%q) error = %v, want ErrNotFound", tt.explicit, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.explicit, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.explicit, got, tt.want)
			}
		})
	}
}

func TestResolver_Resolve_InstallHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "brew install whisper-cpp"},
		{"linux", "cmake --build build"},
		{"windows", "whisper-cli.exe"},
		{"plan9", "github.com/ggml-org/whisper.cpp"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			t.Parallel()

			r := NewResolver(
				WithFileReader(&mockFileReader{}),
				WithEnvProvider(&mockEnv{}),
				WithPlatform(tt.goos),
			)
			_, err := r.Resolve("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Resolve() error = %v, want hint containing %q", err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolver_CheckModel - Model file validation
// ---------------------------------------------------------------------------

func TestResolver_CheckModel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	model := filepath.Join(dir, "ggml-base.en.bin")
	if err := os.WriteFile(model, []byte("ggml"), 0644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid model", model, false},
		{"empty path", "", true},
		{"missing file", filepath.Join(dir, "missing.bin"), true},
		{"empty file", empty, true},
		{"directory", dir, true},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := r.CheckModel(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrModelNotFound) {
					t.Errorf("CheckModel(%q) error = %v, want ErrModelNotFound", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Errorf("CheckModel(%q) unexpected error: %v", tt.path, err)
			}
		})
	}
}
