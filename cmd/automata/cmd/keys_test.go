package cmd

import (
	"bytes"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"
)

func setupDatabase(t *testing.T) string {
	t.Helper()
	secret := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32))
	t.Setenv("AUTOMATA_HMAC_SECRET", "0123456789abcdef0123456789abcdef:"+secret)
	return "sqlite://" + filepath.Join(t.TempDir(), "automata.db")
}

func TestKeys_CreateAndRevoke(t *testing.T) {
	dbURL := setupDatabase(t)

	out, err := execute(t, "keys", "create", "--label", "ci", "--database.url", dbURL)
	if err != nil {
		t.Fatalf("keys create error = %v", err)
	}
	var id, key string
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "id:"); ok {
			id = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(line, "key:"); ok {
			key = strings.TrimSpace(v)
		}
	}
	if id == "" || !strings.HasPrefix(key, "am-v1-0123456789abcdef0123456789abcdef-") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := execute(t, "keys", "revoke", id, "--database.url", dbURL); err != nil {
		t.Fatalf("keys revoke error = %v", err)
	}
	if _, err := execute(t, "keys", "revoke", "00000000-0000-0000-0000-000000000000", "--database.url", dbURL); err == nil {
		t.Error("expected error revoking unknown key")
	}
}

func TestMigrate_Status(t *testing.T) {
	dbURL := setupDatabase(t)

	if _, err := execute(t, "migrate", "up", "--database.url", dbURL); err != nil {
		t.Fatalf("migrate up error = %v", err)
	}
	out, err := execute(t, "migrate", "status", "--database.url", dbURL)
	if err != nil {
		t.Fatalf("migrate status error = %v", err)
	}
	for _, id := range []string{"001_initial_schema.sql", "002_api_keys.sql"} {
		if !strings.Contains(out, id) {
			t.Errorf("status output missing %s:\n%s", id, out)
		}
	}
	if strings.Contains(out, "pending") {
		t.Errorf("no migration should be pending:\n%s", out)
	}
}
