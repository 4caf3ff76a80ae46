package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-practicelog/internal/session"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	token, err := c.Login(context.Background(), "a@b.c", "pw")
	if err != nil || token != "tok-1" {
		t.Fatalf("login: %v %s", err, token)
	}
	if c.token != "tok-1" {
		t.Fatalf("token not stored")
	}
}

func TestCreateSessionSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Fatalf("missing bearer header")
		}
		var in session.CreateSessionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if in.TotalDuration != 45 {
			t.Fatalf("unexpected payload: %+v", in)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(session.Session{ID: "sess-1", TotalDuration: 45})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1")
	created, err := c.CreateSession(context.Background(), session.CreateSessionInput{
		PracticeDate:  "2026-08-29",
		TotalDuration: 45,
	})
	if err != nil || created.ID != "sess-1" {
		t.Fatalf("create session: %v %+v", err, created)
	}
}

func TestCreateItemPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/sess-1/items" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(session.Item{ID: "item-1", SessionID: "sess-1"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	item, err := c.CreateItem(context.Background(), "sess-1", session.ItemInput{ItemType: "scale", ItemName: "X"})
	if err != nil || item.ID != "item-1" {
		t.Fatalf("create item: %v", err)
	}
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "an active session already exists", http.StatusConflict)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	_, err := c.CreateSession(context.Background(), session.CreateSessionInput{})
	if err == nil {
		t.Fatalf("expected error for 409")
	}
}
