package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestGroupsList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/configuration/v2/groups" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "20" {
			t.Errorf("Expected limit=20, got %q", got)
		}
		if got := r.URL.Query().Get("offset"); got != "40" {
			t.Errorf("Expected offset=40, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data": [["Branch-01"], ["Branch-02"]], "total": 42}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	resp, err := client.Groups().List(context.Background(), 20, 40)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	var page GroupsPage
	if err := resp.Decode(&page); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if page.Total != 42 {
		t.Errorf("Expected total 42, got %d", page.Total)
	}
	names := page.Names()
	if len(names) != 2 || names[0] != "Branch-01" || names[1] != "Branch-02" {
		t.Errorf("Unexpected names: %v", names)
	}
}

func TestGroupsTemplateInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/configuration/v2/groups/template_info" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("groups"); got != "Branch-01,Campus" {
			t.Errorf("Expected comma-joined groups param, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data": [{"group": "Branch-01", "template_details": {"Wired": true, "Wireless": false}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	resp, err := client.Groups().TemplateInfo(context.Background(), []string{"Branch-01", "Campus"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	var page GroupModesPage
	if err := resp.Decode(&page); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].Group != "Branch-01" {
		t.Errorf("Unexpected page data: %+v", page.Data)
	}
	if page.Data[0].Mode() != "template" {
		t.Errorf("Expected template mode, got %s", page.Data[0].Mode())
	}
}

func TestGroupsClone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/configuration/v2/groups/clone" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Body decode failed: %v", err)
		}
		if body["group"] != "Branch-02" || body["clone_group"] != "Branch-01" {
			t.Errorf("Unexpected body: %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`"Created"`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	resp, err := client.Groups().Clone(context.Background(), "Branch-02", "Branch-01")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}
}

func TestGroupsCreate_Body(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/configuration/v3/groups" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Body decode failed: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`"Created"`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	attrs := &GroupAttributes{
		TemplateInfo: &TemplateInfo{Wired: true},
		Architecture: ArchitectureAOS10,
		DeviceTypes:  []DeviceType{DeviceTypeAccessPoints, DeviceTypeGateways},
		APRole:       APRoleMicrobranch,
		MonitorMode:  []SwitchType{SwitchTypeAOSCX},
	}
	if _, err := client.Groups().Create(context.Background(), "Branch-03", attrs); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if captured["group"] != "Branch-03" {
		t.Errorf("Expected group Branch-03, got %v", captured["group"])
	}
	ga, ok := captured["group_attributes"].(map[string]any)
	if !ok {
		t.Fatalf("Missing group_attributes: %v", captured)
	}
	template, ok := ga["template_info"].(map[string]any)
	if !ok {
		t.Fatalf("Missing template_info: %v", ga)
	}
	if template["Wired"] != true || template["Wireless"] != false {
		t.Errorf("Unexpected template_info: %v", template)
	}
	props, ok := ga["group_properties"].(map[string]any)
	if !ok {
		t.Fatalf("Missing group_properties: %v", ga)
	}
	if props["Architecture"] != "AOS10" {
		t.Errorf("Expected Architecture AOS10, got %v", props["Architecture"])
	}
	if props["ApNetworkRole"] != "Microbranch" {
		t.Errorf("Expected ApNetworkRole Microbranch, got %v", props["ApNetworkRole"])
	}
	// The external schema spells this key with a trailing colon.
	mon, ok := props["MonitorOnly:"].([]any)
	if !ok || len(mon) != 1 || mon[0] != "AOS_CX" {
		t.Errorf("Unexpected MonitorOnly: value: %v", props["MonitorOnly:"])
	}
	// Unset fields must be pruned, not sent as nulls.
	for _, absent := range []string{"GwNetworkRole", "AllowedSwitchTypes", "NewCentral"} {
		if _, present := props[absent]; present {
			t.Errorf("Expected %s to be pruned, got %v", absent, props[absent])
		}
	}
}

func TestGroupsCreate_DefaultTemplateInfo(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Body decode failed: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	newCentral := false
	attrs := &GroupAttributes{NewCentral: &newCentral}
	if _, err := client.Groups().Create(context.Background(), "UI-Group", attrs); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	ga := captured["group_attributes"].(map[string]any)
	template := ga["template_info"].(map[string]any)
	if template["Wired"] != false || template["Wireless"] != false {
		t.Errorf("Expected both template flags false, got %v", template)
	}
	props := ga["group_properties"].(map[string]any)
	if props["NewCentral"] != false {
		t.Errorf("Expected explicit NewCentral false to survive pruning, got %v", props["NewCentral"])
	}
}

func TestGroupsUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("Expected PATCH, got %s", r.Method)
		}
		if r.URL.Path != "/configuration/v2/groups/Branch-01" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Body decode failed: %v", err)
		}
		if body["group_password"] != "s3cret" {
			t.Errorf("Expected group_password in body, got %v", body)
		}
		if _, present := body["architecture"]; present {
			t.Errorf("Expected unset attributes omitted, got %v", body)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`"Updated"`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	attrs := &GroupAttributes{GroupPassword: "s3cret"}
	resp, err := client.Groups().Update(context.Background(), "Branch-01", attrs)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestGroupsDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		if r.URL.Path != "/configuration/v1/groups/Branch-01" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`"Deleted"`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	resp, err := client.Groups().Delete(context.Background(), "Branch-01")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestListNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data": [["a"], ["b"], []], "total": 5}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	names, total, err := client.Groups().ListNames(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if total != 5 {
		t.Errorf("Expected total 5, got %d", total)
	}
	if len(names) != 2 {
		t.Errorf("Expected empty rows skipped, got %v", names)
	}
}

func TestListNames_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"description": "forbidden"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	_, _, err := client.Groups().ListNames(context.Background(), 2, 0)
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", apiErr.StatusCode)
	}
}

func TestListNames_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	_, _, err := client.Groups().ListNames(context.Background(), 2, 0)
	if err == nil {
		t.Fatal("Expected decode error but got nil")
	}
	if !strings.Contains(err.Error(), "unexpected API response format") {
		t.Errorf("Expected decode failure message, got: %v", err)
	}
}

func TestListAllModes(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		names := strings.Split(r.URL.Query().Get("groups"), ",")
		if len(names) > MaxModeBatch {
			t.Errorf("Batch exceeds cap: %d names", len(names))
		}
		modes := make([]GroupMode, 0, len(names))
		for _, n := range names {
			modes = append(modes, GroupMode{Group: n})
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(GroupModesPage{Data: modes})
	}))
	defer server.Close()

	names := make([]string, 50)
	for i := range names {
		names[i] = fmt.Sprintf("group-%02d", i)
	}

	client := newTestClient(server.URL, "token")
	modes, err := client.Groups().ListAllModes(context.Background(), names)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(modes) != 50 {
		t.Fatalf("Expected 50 modes, got %d", len(modes))
	}
	for i, m := range modes {
		if m.Group != names[i] {
			t.Fatalf("Order not preserved at %d: got %s, want %s", i, m.Group, names[i])
		}
	}
	if requests.Load() != 3 {
		t.Errorf("Expected 3 batched requests, got %d", requests.Load())
	}
}

func TestListAllModes_Empty(t *testing.T) {
	client := newTestClient("https://example.com", "token")
	modes, err := client.Groups().ListAllModes(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if modes != nil {
		t.Errorf("Expected nil result, got %v", modes)
	}
}
