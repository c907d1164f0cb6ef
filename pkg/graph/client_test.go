package graph

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// captureServer records the last request and replies with the given body.
func captureServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var last http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r
		last.URL = r.URL
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestProfileRequestShape(t *testing.T) {
	srv, last := captureServer(t, http.StatusOK, `{"id":"1","name":"Jane"}`)

	client := NewClient(NewSettings(srv.URL, "", ""), nil)
	res, err := client.Profile(context.Background(), []string{"id", "name"}, "tok123")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if last.URL.Path != "/me" {
		t.Fatalf("path = %q", last.URL.Path)
	}
	q := last.URL.Query()
	if got := q.Get("fields"); got != "id,name" {
		t.Fatalf("fields = %q", got)
	}
	if got := q.Get("access_token"); got != "tok123" {
		t.Fatalf("access_token = %q", got)
	}
	if _, present := q["appsecret_proof"]; present {
		t.Fatalf("appsecret_proof attached without a configured secret")
	}
	if res.String("name") != "Jane" {
		t.Fatalf("decoded name = %q", res.String("name"))
	}
}

func TestProfileSignsWhenSecretConfigured(t *testing.T) {
	srv, last := captureServer(t, http.StatusOK, `{}`)

	client := NewClient(NewSettings(srv.URL, "app-1", "hush"), nil)
	if _, err := client.Profile(context.Background(), []string{"id"}, "tok"); err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if got := last.URL.Query().Get("appsecret_proof"); got != Sign("tok", "hush") {
		t.Fatalf("appsecret_proof = %q", got)
	}
}

func TestMyLikesProofIsStableAcrossCalls(t *testing.T) {
	srv, last := captureServer(t, http.StatusOK, `{"data":[]}`)

	client := NewClient(NewSettings(srv.URL, "", "hush"), nil)

	proofs := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		if _, err := client.MyLikes(context.Background(), "tok"); err != nil {
			t.Fatalf("MyLikes call %d: %v", i, err)
		}
		proofs = append(proofs, last.URL.Query().Get("appsecret_proof"))
	}
	if proofs[0] == "" || proofs[0] != proofs[1] {
		t.Fatalf("proofs differ across calls: %v", proofs)
	}
	if last.URL.Path != "/me/likes" {
		t.Fatalf("path = %q", last.URL.Path)
	}
}

func TestPermissionsPath(t *testing.T) {
	srv, last := captureServer(t, http.StatusOK, `{"data":[]}`)

	client := NewClient(NewSettings(srv.URL, "", ""), nil)
	if _, err := client.Permissions(context.Background(), "42", "tok"); err != nil {
		t.Fatalf("Permissions: %v", err)
	}
	if last.URL.Path != "/42/permissions" {
		t.Fatalf("path = %q", last.URL.Path)
	}
}

func TestPageLikesExtractsCount(t *testing.T) {
	srv, last := captureServer(t, http.StatusOK, `{"likes":42}`)

	client := NewClient(NewSettings(srv.URL, "", ""), nil)
	likes, err := client.PageLikes(context.Background(), "123", "tok")
	if err != nil {
		t.Fatalf("PageLikes: %v", err)
	}
	if likes != 42 {
		t.Fatalf("likes = %d", likes)
	}
	if last.URL.Path != "/123" {
		t.Fatalf("path = %q", last.URL.Path)
	}
	if got := last.URL.Query().Get("fields"); got != "likes" {
		t.Fatalf("fields = %q", got)
	}
}

func TestPageLikesMissingFieldIsHardError(t *testing.T) {
	srv, _ := captureServer(t, http.StatusOK, `{}`)

	client := NewClient(NewSettings(srv.URL, "", ""), nil)
	_, err := client.PageLikes(context.Background(), "123", "tok")
	if err == nil {
		t.Fatalf("expected error for missing likes field")
	}
	var missing *MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "likes" {
		t.Fatalf("expected MissingFieldError for likes, got %v", err)
	}
}

func TestLongLivedAccessTokenAlwaysSigns(t *testing.T) {
	srv, last := captureServer(t, http.StatusOK, `{"access_token":"long","expires_in":5183944}`)

	// Secret deliberately unset: the exchange call still signs.
	client := NewClient(NewSettings(srv.URL, "app-1", ""), nil)
	res, err := client.LongLivedAccessToken(context.Background(), "short")
	if err != nil {
		t.Fatalf("LongLivedAccessToken: %v", err)
	}

	if last.URL.Path != "/oauth/access_token" {
		t.Fatalf("path = %q", last.URL.Path)
	}
	q := last.URL.Query()
	if got := q.Get("grant_type"); got != "fb_exchange_token" {
		t.Fatalf("grant_type = %q", got)
	}
	if got := q.Get("client_id"); got != "app-1" {
		t.Fatalf("client_id = %q", got)
	}
	if got := q.Get("fb_exchange_token"); got != "short" {
		t.Fatalf("fb_exchange_token = %q", got)
	}
	if got := q.Get("appsecret_proof"); got != Sign("short", "") {
		t.Fatalf("appsecret_proof = %q", got)
	}
	if res.String("access_token") != "long" {
		t.Fatalf("decoded token = %q", res.String("access_token"))
	}
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	srv, _ := captureServer(t, http.StatusBadRequest,
		`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`)

	client := NewClient(NewSettings(srv.URL, "", ""), nil)
	_, err := client.MyLikes(context.Background(), "bogus")
	if err == nil {
		t.Fatalf("expected error on 400 response")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Code != 190 || apiErr.Type != "OAuthException" {
		t.Fatalf("decoded envelope wrong: %+v", apiErr)
	}
}

func TestRequestOptionsPassThrough(t *testing.T) {
	srv, last := captureServer(t, http.StatusOK, `{}`)

	client := NewClient(NewSettings(srv.URL, "", ""), nil)
	_, err := client.Page(context.Background(), "99", "tok", []string{"name"},
		WithParam("locale", "en_US"),
		WithHeader("X-Debug", "1"),
	)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if got := last.URL.Query().Get("locale"); got != "en_US" {
		t.Fatalf("locale = %q", got)
	}
	if got := last.Header.Get("X-Debug"); got != "1" {
		t.Fatalf("X-Debug header = %q", got)
	}
}
