package cmd

import (
	"context"
	"strings"
	"testing"
)

func TestExecute_Help(t *testing.T) {
	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"--help"}); err != nil {
			t.Errorf("Execute() with --help failed: %v", err)
		}
	})

	for _, want := range []string{"central", "groups", "auth", "apply", "version"} {
		if !strings.Contains(output, want) {
			t.Errorf("Help output missing %q", want)
		}
	}
}

func TestExecute_UnknownCommandSuggestion(t *testing.T) {
	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"grops"})
	})

	if err == nil {
		t.Fatal("Expected error for unknown command")
	}
	if !strings.Contains(stderr, "Did you mean") {
		t.Errorf("Expected a suggestion on stderr, got %q", stderr)
	}
	if !strings.Contains(stderr, "groups") {
		t.Errorf("Expected groups suggested, got %q", stderr)
	}
	if ExitCode(err) != exitUsage {
		t.Errorf("Expected exit code %d, got %d", exitUsage, ExitCode(err))
	}
}

func TestExecute_UnknownFlagSuggestion(t *testing.T) {
	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"groups", "list", "--limt", "5"})
	})

	if err == nil {
		t.Fatal("Expected error for unknown flag")
	}
	if !strings.Contains(stderr, "to see supported flags") {
		t.Errorf("Expected flag help pointer on stderr, got %q", stderr)
	}
	if ExitCode(err) != exitUsage {
		t.Errorf("Expected exit code %d, got %d", exitUsage, ExitCode(err))
	}
}

func TestExecute_JSONConflictsWithTextOutput(t *testing.T) {
	err := Execute(context.Background(), []string{"version", "--json", "--output", "text"})
	if err == nil {
		t.Fatal("Expected conflict error")
	}
	if !strings.Contains(err.Error(), "--json conflicts") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestExecute_InvalidOutputFormat(t *testing.T) {
	err := Execute(context.Background(), []string{"version", "--output", "yaml"})
	if err == nil {
		t.Fatal("Expected error for invalid output format")
	}
	if !strings.Contains(err.Error(), "invalid output format") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestExecute_JQImpliesJSON(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("GET", "/configuration/v2/groups", jsonResponse(200, `{"data": [["a"]], "total": 1}`)))

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "list", "--jq", ".response_code"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})
	if strings.TrimSpace(output) != "200" {
		t.Errorf("Expected jq-filtered JSON output, got %q", output)
	}
}

func TestExecute_NegativeRetryFlagRejected(t *testing.T) {
	err := Execute(context.Background(), []string{"version", "--max-rate-limit-retries", "-1"})
	if err == nil {
		t.Fatal("Expected error for negative retry count")
	}
	if !strings.Contains(err.Error(), "must be >= 0") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestExecute_QuietSuppressesTextOutput(t *testing.T) {
	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version", "--quiet"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})
	if output != "" {
		t.Errorf("Expected no stdout with --quiet, got %q", output)
	}
}

func TestExecute_FlagAliases(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("GET", "/configuration/v2/groups", jsonResponse(200, `{"data": [["a"]], "total": 1}`)))

	// --cj is the hidden alias for --compact-json.
	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "list", "--json", "--cj"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})
	if strings.Contains(output, "\n  ") {
		t.Errorf("Expected compact JSON via alias, got %q", output)
	}
}

func TestVersionCommand(t *testing.T) {
	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})
	if !strings.Contains(output, "central-cli version dev") {
		t.Errorf("Unexpected version output: %q", output)
	}
}
