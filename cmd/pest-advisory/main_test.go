package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "logger"},
		{"missing catalog", map[string]string{"CATALOG_PATH": "missing.yaml"}, "catalog"},
		{"missing model", map[string]string{"ML_MODEL_PATH": "missing.yaml"}, "ML model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			t.Setenv("DATABASE_PATH", filepath.Join(dir, "db", "test.db"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := run()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("run() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}
