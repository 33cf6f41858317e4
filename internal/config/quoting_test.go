package config

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

func TestGodotenvQuoting(t *testing.T) {
	content := `TICKET_FILE='工单 "2024".xlsx'`
	tmpfile, err := os.CreateTemp(t.TempDir(), ".env.test")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(tmpfile.Name())
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `工单 "2024".xlsx`
	if env["TICKET_FILE"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["TICKET_FILE"])
	}
}
