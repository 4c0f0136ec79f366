package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupPrecedence(t *testing.T) {
	dir := t.TempDir()
	fileSecret := filepath.Join(dir, "explicit")
	if err := os.WriteFile(fileSecret, []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "walletscan_test_token"), []byte(" from-dir "), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		env     map[string]string
		want    string
		wantHit bool
	}{
		{
			name:    "unset",
			env:     map[string]string{},
			want:    "",
			wantHit: false,
		},
		{
			name:    "directory",
			env:     map[string]string{DirEnv: dir},
			want:    "from-dir",
			wantHit: true,
		},
		{
			name:    "env beats directory",
			env:     map[string]string{DirEnv: dir, "WALLETSCAN_TEST_TOKEN": "from-env"},
			want:    "from-env",
			wantHit: true,
		},
		{
			name:    "file beats env",
			env:     map[string]string{"WALLETSCAN_TEST_TOKEN": "from-env", "WALLETSCAN_TEST_TOKEN_FILE": fileSecret},
			want:    "from-file",
			wantHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DirEnv, "")
			t.Setenv("WALLETSCAN_TEST_TOKEN", "")
			t.Setenv("WALLETSCAN_TEST_TOKEN_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, found, err := lookup("WALLETSCAN_TEST_TOKEN")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want || found != tt.wantHit {
				t.Errorf("lookup() = %q, %v; want %q, %v", got, found, tt.want, tt.wantHit)
			}
		})
	}
}

func TestGetMissingFile(t *testing.T) {
	t.Setenv("WALLETSCAN_TEST_TOKEN_FILE", filepath.Join(t.TempDir(), "missing"))

	if _, err := Get("WALLETSCAN_TEST_TOKEN", "fallback"); err == nil {
		t.Fatal("expected error for unreadable secret file")
	}
}

func TestGetDefault(t *testing.T) {
	t.Setenv(DirEnv, "")
	t.Setenv("WALLETSCAN_TEST_TOKEN", "")
	t.Setenv("WALLETSCAN_TEST_TOKEN_FILE", "")

	got, err := Get("WALLETSCAN_TEST_TOKEN", "fallback")
	if err != nil || got != "fallback" {
		t.Errorf("Get() = %q, %v; want fallback, nil", got, err)
	}
}
