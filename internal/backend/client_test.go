// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateSessionSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/create_session" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"status":"success","session_id":"sess-42"}`)
	}))
	defer server.Close()

	id, err := testClient(server.URL).CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if id != "sess-42" {
		t.Errorf("session id = %q", id)
	}
}

func TestCreateSessionErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","session_id":"","error":"system not initialized"}`)
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateSession(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrSessionRejected) {
		t.Errorf("err = %v, want ErrSessionRejected", err)
	}
}

func TestCreateSessionHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"status":"error","session_id":"","error":"broken"}`)
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateSession(context.Background())
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("error type = %T, want *BackendError", err)
	}
	if be.Status != http.StatusInternalServerError || be.Message != "broken" {
		t.Errorf("backend error = %+v", be)
	}
}

func TestListServers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/servers" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"servers":[
			{"name":"search","status":"active","connected":true,"config":{"url":"http://localhost:9000"}},
			{"name":"files","status":"inactive","connected":false,"config":{}}
		]}`)
	}))
	defer server.Close()

	servers, err := testClient(server.URL).ListServers(context.Background())
	if err != nil {
		t.Fatalf("ListServers: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("got %d servers", len(servers))
	}
	if servers[0].Name != "search" || !servers[0].Connected {
		t.Errorf("servers[0] = %+v", servers[0])
	}
	if servers[1].Status != "inactive" {
		t.Errorf("servers[1] = %+v", servers[1])
	}
}

func TestAddServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/add_server" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"status":"success","message":"server search added","exists":false}`)
	}))
	defer server.Close()

	result, err := testClient(server.URL).AddServer(context.Background(), "search", map[string]any{"url": "http://localhost:9000"})
	if err != nil {
		t.Fatalf("AddServer: %v", err)
	}
	if result.Exists {
		t.Error("exists should be false")
	}
}

func TestAddServerAlreadyExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"warning","message":"server search already exists","exists":true}`)
	}))
	defer server.Close()

	result, err := testClient(server.URL).AddServer(context.Background(), "search", map[string]any{})
	if err != nil {
		t.Fatalf("AddServer: %v", err)
	}
	if !result.Exists {
		t.Error("exists should be true")
	}
}

func TestIsSessionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("connection refused"), false},
		{fmt.Errorf("%w: invalid session_id", ErrSessionRejected), true},
		{&BackendError{Status: 400, Message: "unknown session"}, true},
	}
	for _, tt := range tests {
		if got := IsSessionError(tt.err); got != tt.want {
			t.Errorf("IsSessionError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
