package sheet

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const serviceAccountJSON = `{"type": "service_account", "project_id": "geomap", "client_email": "geomap@geomap.iam.gserviceaccount.com"}`

func TestCredentialsFromEnvWithRawJSON(t *testing.T) {
	credentials, err := CredentialsFromEnv(serviceAccountJSON)
	if err != nil {
		t.Fatalf("Unexpected error returned from CredentialsFromEnv (%v)", err)
	}

	if string(credentials.bytes) != serviceAccountJSON {
		t.Errorf("Incorrect credentials\n   expected: %v\n   got:      %v\n", serviceAccountJSON, string(credentials.bytes))
	}

	if !credentials.IsServiceAccount() {
		t.Errorf("Expected service account credentials")
	}
}

func TestCredentialsFromEnvWithBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(serviceAccountJSON))

	credentials, err := CredentialsFromEnv(encoded)
	if err != nil {
		t.Fatalf("Unexpected error returned from CredentialsFromEnv (%v)", err)
	}

	if string(credentials.bytes) != serviceAccountJSON {
		t.Errorf("Incorrect credentials\n   expected: %v\n   got:      %v\n", serviceAccountJSON, string(credentials.bytes))
	}
}

func TestCredentialsFromEnvWithGarbage(t *testing.T) {
	if _, err := CredentialsFromEnv("!!! not credentials !!!"); err == nil {
		t.Fatalf("Expected error return for invalid credentials, got %v", err)
	}
}

func TestCredentialsFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "credentials.json")

	if err := os.WriteFile(file, []byte(serviceAccountJSON), 0600); err != nil {
		t.Fatalf("Error creating test file (%v)", err)
	}

	credentials, err := CredentialsFromFile(file)
	if err != nil {
		t.Fatalf("Unexpected error returned from CredentialsFromFile (%v)", err)
	}

	if string(credentials.bytes) != serviceAccountJSON {
		t.Errorf("Incorrect credentials\n   expected: %v\n   got:      %v\n", serviceAccountJSON, string(credentials.bytes))
	}

	if expected := filepath.Join(dir, "credentials.tokens"); credentials.tokens != expected {
		t.Errorf("Incorrect tokens path\n   expected: %v\n   got:      %v\n", expected, credentials.tokens)
	}
}

func TestCredentialsFromFileWithMissingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "missing.json")

	if _, err := CredentialsFromFile(file); err == nil {
		t.Fatalf("Expected error return for missing file, got %v", err)
	}
}

func TestIsServiceAccount(t *testing.T) {
	oauth := `{"installed": {"client_id": "...", "client_secret": "..."}}`

	credentials := Credentials{bytes: []byte(oauth)}
	if credentials.IsServiceAccount() {
		t.Errorf("Expected OAuth2 client configuration, got service account")
	}
}

func TestCredentialsFromEnvTrimsWhitespace(t *testing.T) {
	encoded := "  " + base64.StdEncoding.EncodeToString([]byte(serviceAccountJSON)) + "\n"

	credentials, err := CredentialsFromEnv(encoded)
	if err != nil {
		t.Fatalf("Unexpected error returned from CredentialsFromEnv (%v)", err)
	}

	if !strings.HasPrefix(string(credentials.bytes), "{") {
		t.Errorf("Incorrect credentials\n   expected: JSON\n   got:      %v\n", string(credentials.bytes))
	}
}
