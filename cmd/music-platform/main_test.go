package main

import (
	"bytes"
	"strings"
	"testing"
)

func setMemoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MUSIC_CONFIG", "")
	t.Setenv("MUSIC_DATABASE_DRIVER", "memory")
	t.Setenv("MUSIC_SECURITY_JWT_SECRETS", "0123456789abcdef0123456789abcdef")
	t.Setenv("MUSIC_LOGGING_LEVEL", "disabled")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = ""
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "create-admin"} {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Errorf("Find(%q) error = %v", name, err)
		}
	}
}

func TestCommandsRejectMemoryDriver(t *testing.T) {
	setMemoryEnv(t)
	t.Setenv(adminPasswordEnv, "changeme1")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "migrate", args: []string{"migrate"}, wantErr: "postgres driver"},
		{name: "create-admin", args: []string{"create-admin", "root"}, wantErr: "postgres driver"},
		{name: "create-admin without username", args: []string{"create-admin"}, wantErr: "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Execute(%v) error = %v, want containing %q", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestServeRequiresAdminPassword(t *testing.T) {
	setMemoryEnv(t)
	t.Setenv(adminPasswordEnv, "")

	_, err := execute(t, "serve", "--admin-user", "root")
	if err == nil || !strings.Contains(err.Error(), adminPasswordEnv) {
		t.Errorf("serve error = %v, want mention of %s", err, adminPasswordEnv)
	}
}

func TestMissingSecret(t *testing.T) {
	setMemoryEnv(t)
	t.Setenv("MUSIC_SECURITY_JWT_SECRETS", "")

	if _, err := execute(t, "migrate"); err == nil {
		t.Error("migrate without a JWT secret should fail config validation")
	}
}
