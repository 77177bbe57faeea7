package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupsList(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("GET", "/configuration/v2/groups", func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "20" {
				t.Errorf("Expected default limit 20, got %q", got)
			}
			if got := r.URL.Query().Get("offset"); got != "0" {
				t.Errorf("Expected default offset 0, got %q", got)
			}
			jsonResponse(200, `{"data": [["Branch-East"], ["Branch-West"]], "total": 2}`)(w, r)
		}))

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "list"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	for _, want := range []string{"NAME", "Branch-East", "Branch-West", "Showing 2 of 2"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}
}

func TestGroupsList_PagingFlags(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("GET", "/configuration/v2/groups", func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("Expected limit 5, got %q", got)
			}
			if got := r.URL.Query().Get("offset"); got != "10" {
				t.Errorf("Expected offset 10, got %q", got)
			}
			jsonResponse(200, `{"data": [["g11"]], "total": 42}`)(w, r)
		}))

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "list", "--lim", "5", "--off", "10"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})
	if !strings.Contains(output, "Showing 1 of 42") {
		t.Errorf("Expected paging summary, got:\n%s", output)
	}
}

func TestGroupsList_All(t *testing.T) {
	pages := map[string]string{
		"0": `{"data": [["a"], ["b"]], "total": 3}`,
		"2": `{"data": [["c"]], "total": 3}`,
	}
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("GET", "/configuration/v2/groups", func(w http.ResponseWriter, r *http.Request) {
			body, ok := pages[r.URL.Query().Get("offset")]
			if !ok {
				t.Errorf("Unexpected offset %q", r.URL.Query().Get("offset"))
				body = `{"data": [], "total": 3}`
			}
			jsonResponse(200, body)(w, r)
		}))

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "list", "--all"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	for _, want := range []string{"a", "b", "c", "Total: 3"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}
}

func TestGroupsList_JSON(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("GET", "/configuration/v2/groups", jsonResponse(200, `{"data": [["a"]], "total": 1}`)))

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "list", "--json"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	var res struct {
		ResponseCode int  `json:"response_code"`
		Changed      bool `json:"changed"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &res))
	assert.Equal(t, 200, res.ResponseCode)
	assert.False(t, res.Changed)
}

func TestGroupsList_Fatal(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("GET", "/configuration/v2/groups", jsonResponse(403, `{"description": "Forbidden"}`)))

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"groups", "list"})
	})
	if err == nil {
		t.Fatal("Expected error for 403")
	}
	if ExitCode(err) != exitForbidden {
		t.Errorf("Expected exit code %d, got %d", exitForbidden, ExitCode(err))
	}
}

func TestGroupsMode(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("GET", "/configuration/v2/groups/template_info", func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("groups"); got != "Branch-East,Campus-HQ" {
				t.Errorf("Expected groups csv, got %q", got)
			}
			jsonResponse(200, `{"data": [
				{"group": "Branch-East", "template_details": {"Wired": true, "Wireless": false}},
				{"group": "Campus-HQ", "template_details": {"Wired": false, "Wireless": false}}
			]}`)(w, r)
		}))

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "mode", "Branch-East", "Campus-HQ"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	for _, want := range []string{"GROUP", "MODE", "WIRED", "WIRELESS", "template", "UI"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}
}

func TestGroupsMode_Empty(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("GET", "/configuration/v2/groups/template_info", jsonResponse(200, `{"data": []}`)))

	var stdout string
	stderr := captureStderr(t, func() {
		stdout = captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"groups", "mode", "ghost"}); err != nil {
				t.Fatalf("command failed: %v", err)
			}
		})
	})

	if strings.Contains(stdout, "GROUP") {
		t.Errorf("Expected no table header for empty result, got:\n%s", stdout)
	}
	if !strings.Contains(stderr, "No groups found.") {
		t.Errorf("Expected empty notice on stderr, got %q", stderr)
	}
}

func TestGroupsMode_BatchesLargeRequests(t *testing.T) {
	// Batched template_info requests run concurrently.
	var mu sync.Mutex
	var batches []int
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("GET", "/configuration/v2/groups/template_info", func(w http.ResponseWriter, r *http.Request) {
			names := strings.Split(r.URL.Query().Get("groups"), ",")
			mu.Lock()
			batches = append(batches, len(names))
			mu.Unlock()

			modes := make([]string, 0, len(names))
			for _, n := range names {
				modes = append(modes, `{"group": "`+n+`", "template_details": {"Wired": false, "Wireless": false}}`)
			}
			jsonResponse(200, `{"data": [`+strings.Join(modes, ",")+`]}`)(w, r)
		}))

	args := []string{"groups", "mode"}
	for i := 0; i < 25; i++ {
		args = append(args, string(rune('a'+i%26))+"-group")
	}

	captureStdout(t, func() {
		if err := Execute(context.Background(), args); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	sort.Ints(batches)
	if len(batches) != 2 || batches[0] != 5 || batches[1] != 20 {
		t.Errorf("Expected batch sizes 5 and 20 for 25 names, got %v", batches)
	}
}

func TestGroupsClone(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("POST", "/configuration/v2/groups/clone", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Branch-West-2", body["group"])
			assert.Equal(t, "Branch-Template", body["clone_group"])
			jsonResponse(201, `"Created"`)(w, r)
		}))

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "clone", "Branch-West-2", "--from", "Branch-Template"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})
	if !strings.Contains(output, "Cloned Branch-Template into Branch-West-2") {
		t.Errorf("Unexpected output: %q", output)
	}
}

func TestGroupsClone_MissingFrom(t *testing.T) {
	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"groups", "clone", "Branch-West-2"})
	})
	if err == nil {
		t.Fatal("Expected error for missing --from")
	}
	if ExitCode(err) != exitUsage {
		t.Errorf("Expected exit code %d, got %d", exitUsage, ExitCode(err))
	}
}

func TestGroupsCreate(t *testing.T) {
	var body map[string]any
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("POST", "/configuration/v3/groups", func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &body))
			jsonResponse(201, `"Created"`)(w, r)
		}))

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{
			"groups", "create", "Campus-Core",
			"--wired-template",
			"--architecture", "aos10",
			"--device-types", "switches",
			"--switch-types", "aos_cx",
			"--monitor-only", "AOS_CX",
		})
		if err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})
	if !strings.Contains(output, "Created group Campus-Core") {
		t.Errorf("Unexpected output: %q", output)
	}

	require.Equal(t, "Campus-Core", body["group"])
	attrs, ok := body["group_attributes"].(map[string]any)
	require.True(t, ok, "group_attributes missing: %v", body)

	ti, ok := attrs["template_info"].(map[string]any)
	require.True(t, ok, "template_info missing: %v", attrs)
	assert.Equal(t, true, ti["Wired"])
	assert.Equal(t, false, ti["Wireless"])

	props, ok := attrs["group_properties"].(map[string]any)
	require.True(t, ok, "group_properties missing: %v", attrs)

	// Lowercase flag input is canonicalized before it hits the wire.
	assert.Equal(t, "AOS10", props["Architecture"])
	assert.Equal(t, []any{"Switches"}, props["AllowedDevTypes"])
	assert.Equal(t, []any{"AOS_CX"}, props["AllowedSwitchTypes"])

	// The external schema spells this key with a trailing colon.
	assert.Equal(t, []any{"AOS_CX"}, props["MonitorOnly:"])

	// Unset optional fields never reach the wire as nulls.
	assert.NotContains(t, props, "ApNetworkRole")
	assert.NotContains(t, props, "GwNetworkRole")
	assert.NotContains(t, props, "NewCentral")
}

func TestGroupsCreate_InvalidEnum(t *testing.T) {
	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"groups", "create", "x", "--architecture", "nexus"})
	})
	if err == nil {
		t.Fatal("Expected error for invalid architecture")
	}
	if !strings.Contains(err.Error(), "invalid --architecture") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestGroupsCreate_InvalidName(t *testing.T) {
	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"groups", "create", "bad/name"})
	})
	if err == nil {
		t.Fatal("Expected error for invalid group name")
	}
	if !strings.Contains(err.Error(), "invalid characters") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestGroupsUpdate(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("PATCH", "/configuration/v2/groups/Branch-East", func(w http.ResponseWriter, r *http.Request) {
			var attrs map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&attrs))
			assert.Equal(t, "admin1234", attrs["group_password"])
			assert.NotContains(t, attrs, "template_info")
			jsonResponse(200, `"Updated"`)(w, r)
		}))

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "update", "Branch-East", "--pw", "admin1234"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})
	if !strings.Contains(output, "Updated group Branch-East") {
		t.Errorf("Unexpected output: %q", output)
	}
}

func TestGroupsDelete_Force(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("DELETE", "/configuration/v1/groups/Branch-East", jsonResponse(200, `"Success"`)))

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "delete", "Branch-East", "-f"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})
	if !strings.Contains(output, "Deleted group Branch-East") {
		t.Errorf("Unexpected output: %q", output)
	}
}

func TestGroupsDelete_NotFoundIsNoOp(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("DELETE", "/configuration/v1/groups/ghost", jsonResponse(404, `{"description": "Not found"}`)))

	var err error
	output := captureStdout(t, func() {
		err = Execute(context.Background(), []string{"groups", "delete", "ghost", "-f"})
	})
	if err != nil {
		t.Fatalf("Expected deleting a missing group to succeed as a no-op, got: %v", err)
	}
	if !strings.Contains(output, "No change (HTTP 404)") {
		t.Errorf("Expected no-op notice, got %q", output)
	}
}

func TestGroupsDelete_Forbidden(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("DELETE", "/configuration/v1/groups/Branch-East", jsonResponse(403, `{"description": "Forbidden"}`)))

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"groups", "delete", "Branch-East", "-f"})
	})
	if err == nil {
		t.Fatal("Expected error for 403")
	}
	if ExitCode(err) != exitForbidden {
		t.Errorf("Expected exit code %d, got %d", exitForbidden, ExitCode(err))
	}
}

func TestGroupsDelete_JSONRequiresForce(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t))

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"groups", "delete", "Branch-East", "--json"})
	})
	if err == nil {
		t.Fatal("Expected error for JSON delete without --force")
	}
	if !strings.Contains(err.Error(), "--force flag is required") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestGroupsDelete_YesFlagSkipsPrompt(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler(t).
		On("DELETE", "/configuration/v1/groups/Branch-East", jsonResponse(200, `"Success"`)))

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"groups", "delete", "Branch-East", "--yes"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})
	if !strings.Contains(output, "Deleted group Branch-East") {
		t.Errorf("Unexpected output: %q", output)
	}
}
