package service_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RaPidRare/Fitness-and-Nutrition-Tracker/internal/service"
)

func TestCreateBackupWritesChecksum(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "fitlog.db")
	if err := os.WriteFile(src, []byte("password"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	out := filepath.Join(dir, "backups", "fitlog-1.db")
	info, err := service.CreateBackup(src, out)
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if info.SizeBytes != 8 {
		t.Fatalf("expected 8 bytes, got %d", info.SizeBytes)
	}
	if info.Checksum != "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8" {
		t.Fatalf("unexpected checksum %s", info.Checksum)
	}
	sum, err := os.ReadFile(out + ".sha256")
	if err != nil {
		t.Fatalf("read checksum file: %v", err)
	}
	if strings.TrimSpace(string(sum)) != info.Checksum {
		t.Fatalf("checksum file mismatch: %q", sum)
	}

	if _, err := service.CreateBackup("", out); !service.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
