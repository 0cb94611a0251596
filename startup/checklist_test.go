package startup

import (
	"os"
	"testing"

	"go.uber.org/zap"

	"imageflow/core"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

var allChecklistVars = []string{
	"OPENAI_API_KEY", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET_NAME",
	"S3_PUBLIC_LINK", "GOOGLE_VERTEX_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS",
	"FAL_API_KEY",
}

func TestRunChecks_AllMissingReturnsError(t *testing.T) {
	clearEnv(t, allChecklistVars...)

	code := RunChecks(zap.NewNop(), false)

	if code != core.ExitCodeError {
		t.Errorf("RunChecks() = %d, want %d", code, core.ExitCodeError)
	}
}

func TestRunChecks_AllPresentReturnsSuccess(t *testing.T) {
	clearEnv(t, allChecklistVars...)

	credFile, err := os.CreateTemp(t.TempDir(), "creds-*.json")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	credFile.Close()

	os.Setenv("OPENAI_API_KEY", "sk-test")
	os.Setenv("S3_ACCESS_KEY", "access")
	os.Setenv("S3_SECRET_KEY", "secret")
	os.Setenv("S3_BUCKET_NAME", "bucket")
	os.Setenv("S3_PUBLIC_LINK", "https://cdn.example.com")
	os.Setenv("GOOGLE_VERTEX_PROJECT_ID", "proj-123")
	os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", credFile.Name())

	code := RunChecks(zap.NewNop(), false)

	if code != core.ExitCodeSuccess {
		t.Errorf("RunChecks() = %d, want %d", code, core.ExitCodeSuccess)
	}
}

func TestRunChecks_MissingFallbackKeyIsWarningNotError(t *testing.T) {
	clearEnv(t, allChecklistVars...)

	credFile, err := os.CreateTemp(t.TempDir(), "creds-*.json")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	credFile.Close()

	os.Setenv("OPENAI_API_KEY", "sk-test")
	os.Setenv("S3_ACCESS_KEY", "access")
	os.Setenv("S3_SECRET_KEY", "secret")
	os.Setenv("S3_BUCKET_NAME", "bucket")
	os.Setenv("S3_PUBLIC_LINK", "https://cdn.example.com")
	os.Setenv("GOOGLE_VERTEX_PROJECT_ID", "proj-123")
	os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", credFile.Name())
	// FAL_API_KEY intentionally left unset.

	code := RunChecks(zap.NewNop(), false)

	if code != core.ExitCodeSuccess {
		t.Errorf("RunChecks() = %d, want %d (fallback absence should only warn)", code, core.ExitCodeSuccess)
	}
}

func TestRunChecks_UnreadableCredentialsFileFails(t *testing.T) {
	clearEnv(t, allChecklistVars...)

	os.Setenv("OPENAI_API_KEY", "sk-test")
	os.Setenv("S3_ACCESS_KEY", "access")
	os.Setenv("S3_SECRET_KEY", "secret")
	os.Setenv("S3_BUCKET_NAME", "bucket")
	os.Setenv("S3_PUBLIC_LINK", "https://cdn.example.com")
	os.Setenv("GOOGLE_VERTEX_PROJECT_ID", "proj-123")
	os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/nonexistent/creds.json")

	code := RunChecks(zap.NewNop(), false)

	if code != core.ExitCodeError {
		t.Errorf("RunChecks() = %d, want %d", code, core.ExitCodeError)
	}
}
