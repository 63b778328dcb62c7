package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dis/api"
)

// TestBroadcaster tests the event broadcaster fan-out.
func TestBroadcaster(t *testing.T) {
	t.Run("Subscribe and Broadcast", func(t *testing.T) {
		broadcaster := api.NewBroadcaster()
		defer broadcaster.Close()

		sub := broadcaster.Subscribe("test-session", []api.EventType{})

		broadcaster.BroadcastOutput("test-session", "stdout", "Hi")

		select {
		case event := <-sub.Channel:
			if event.Type != api.EventTypeOutput {
				t.Errorf("Expected EventTypeOutput, got %v", event.Type)
			}
			if event.SessionID != "test-session" {
				t.Errorf("Expected session 'test-session', got '%v'", event.SessionID)
			}
			if content, ok := event.Data["content"].(string); !ok || content != "Hi" {
				t.Errorf("Expected content 'Hi', got '%v'", event.Data["content"])
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Timeout waiting for event")
		}

		broadcaster.Unsubscribe(sub)
	})

	t.Run("Session Filtering", func(t *testing.T) {
		broadcaster := api.NewBroadcaster()
		defer broadcaster.Close()

		sub1 := broadcaster.Subscribe("session1", []api.EventType{})
		sub2 := broadcaster.Subscribe("session2", []api.EventType{})

		broadcaster.BroadcastOutput("session1", "stdout", "test")

		select {
		case event := <-sub1.Channel:
			if event.SessionID != "session1" {
				t.Errorf("Expected session1, got %v", event.SessionID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Timeout waiting for event")
		}

		select {
		case event := <-sub2.Channel:
			t.Errorf("sub2 should not receive session1's event, got %v", event)
		case <-time.After(50 * time.Millisecond):
		}

		broadcaster.Unsubscribe(sub1)
		broadcaster.Unsubscribe(sub2)
	})

	t.Run("Event Type Filtering", func(t *testing.T) {
		broadcaster := api.NewBroadcaster()
		defer broadcaster.Close()

		sub := broadcaster.Subscribe("", []api.EventType{api.EventTypeState})

		broadcaster.BroadcastOutput("s", "stdout", "ignored")
		broadcaster.BroadcastState("s", map[string]interface{}{"pc": 0})

		select {
		case event := <-sub.Channel:
			if event.Type != api.EventTypeState {
				t.Errorf("Expected only state events, got %v", event.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Timeout waiting for state event")
		}

		broadcaster.Unsubscribe(sub)
	})
}

// TestSessionLifecycle drives the HTTP surface end to end: create a
// session, load a program, run it, read its status back, destroy it.
func TestSessionLifecycle(t *testing.T) {
	server := api.NewServer(0)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	dir := t.TempDir()
	progPath := filepath.Join(dir, "hello.dis")
	if err := os.WriteFile(progPath, []byte("mov .H #0 out #0 mov .i #0 out #0 die"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	var sessionID string

	t.Run("Create", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/v1/session", "application/json", nil)
		if err != nil {
			t.Fatalf("POST session: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", resp.StatusCode)
		}
		var created api.SessionCreateResponse
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if created.SessionID == "" {
			t.Fatal("Expected non-empty session ID")
		}
		sessionID = created.SessionID
	})

	t.Run("Load", func(t *testing.T) {
		body, _ := json.Marshal(api.LoadProgramRequest{Path: progPath})
		resp, err := http.Post(
			fmt.Sprintf("%s/api/v1/session/%s/load", ts.URL, sessionID),
			"application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST load: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("Run and Status", func(t *testing.T) {
		resp, err := http.Post(
			fmt.Sprintf("%s/api/v1/session/%s/run", ts.URL, sessionID),
			"application/json", nil)
		if err != nil {
			t.Fatalf("POST run: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}

		var status struct {
			Halted bool   `json:"halted"`
			Output string `json:"output"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			t.Fatalf("decoding status: %v", err)
		}
		if !status.Halted {
			t.Error("Expected machine to be halted after run")
		}
		if status.Output != "Hi" {
			t.Errorf("Expected output 'Hi', got %q", status.Output)
		}
	})

	t.Run("Load Error", func(t *testing.T) {
		body, _ := json.Marshal(api.LoadProgramRequest{Path: filepath.Join(dir, "missing.dis")})
		resp, err := http.Post(
			fmt.Sprintf("%s/api/v1/session/%s/load", ts.URL, sessionID),
			"application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST load: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("Expected 422 for missing file, got %d", resp.StatusCode)
		}
	})

	t.Run("Destroy", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete,
			fmt.Sprintf("%s/api/v1/session/%s", ts.URL, sessionID), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE session: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}

		getResp, err := http.Get(fmt.Sprintf("%s/api/v1/session/%s", ts.URL, sessionID))
		if err != nil {
			t.Fatalf("GET destroyed session: %v", err)
		}
		defer getResp.Body.Close()
		if getResp.StatusCode != http.StatusNotFound {
			t.Fatalf("Expected 404 after destroy, got %d", getResp.StatusCode)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	server := api.NewServer(0)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var health map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", health["status"])
	}
}
