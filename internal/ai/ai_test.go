package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/starford/crmai/internal/models"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeProvider serves one canned response and records the last request.
type fakeProvider struct {
	status  int
	body    string
	lastReq *http.Request
	lastRaw []byte
}

func (f *fakeProvider) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lastReq = r
		f.lastRaw, _ = io.ReadAll(r.Body)
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, f *fakeProvider) *Client {
	t.Helper()
	srv := f.server(t)
	return NewClient(Config{
		OpenAIEndpoint: srv.URL + "/v1/chat/completions",
		GeminiEndpoint: srv.URL + "/v1beta/models",
		HTTPClient:     srv.Client(),
	}, WithLogger(quiet))
}

var (
	openaiSettings = models.AISettings{Provider: models.ProviderOpenAI, OpenAIKey: " sk-test ", Model: "gpt-4o"}
	geminiSettings = models.AISettings{Provider: models.ProviderGemini, GeminiKey: "AIza-test"}
)

func TestOpenAIRequestShape(t *testing.T) {
	f := &fakeProvider{status: 200, body: `{"choices":[{"message":{"content":"Bonjour"}}]}`}
	c := testClient(t, f)

	msgs := []Message{{Role: RoleSystem, Content: "dropped"}, {Role: RoleUser, Content: "Salut"}}
	got, err := c.Call(context.Background(), openaiSettings, msgs, "Tu es un assistant CRM.")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != "Bonjour" {
		t.Errorf("text = %q", got)
	}
	if auth := f.lastReq.Header.Get("Authorization"); auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", auth)
	}

	var req openAIRequest
	if err := json.Unmarshal(f.lastRaw, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Model != "gpt-4o" || req.Temperature != 0.7 || req.MaxTokens != 1500 {
		t.Errorf("params = %+v", req)
	}
	want := []Message{{Role: RoleSystem, Content: "Tu es un assistant CRM."}, {Role: RoleUser, Content: "Salut"}}
	if len(req.Messages) != 2 || req.Messages[0] != want[0] || req.Messages[1] != want[1] {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestOpenAIDefaultModel(t *testing.T) {
	f := &fakeProvider{status: 200, body: `{"choices":[{"message":{"content":"ok"}}]}`}
	c := testClient(t, f)
	s := openaiSettings
	s.Model = ""
	if _, err := c.Call(context.Background(), s, []Message{{Role: RoleUser, Content: "x"}}, ""); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !strings.Contains(string(f.lastRaw), `"model":"gpt-4o-mini"`) {
		t.Errorf("request = %s", f.lastRaw)
	}
}

func TestGeminiFoldsSystemPrompt(t *testing.T) {
	f := &fakeProvider{status: 200, body: `{"candidates":[{"content":{"parts":[{"text":"Réponse"}]}}]}`}
	c := testClient(t, f)

	msgs := []Message{
		{Role: RoleUser, Content: "Q1"},
		{Role: RoleAssistant, Content: "A1"},
		{Role: RoleUser, Content: "Q2"},
	}
	got, err := c.Call(context.Background(), geminiSettings, msgs, "SYS")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != "Réponse" {
		t.Errorf("text = %q", got)
	}
	if f.lastReq.URL.Path != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Errorf("path = %q", f.lastReq.URL.Path)
	}
	if f.lastReq.URL.Query().Get("key") != "AIza-test" {
		t.Errorf("key = %q", f.lastReq.URL.Query().Get("key"))
	}

	var req geminiRequest
	if err := json.Unmarshal(f.lastRaw, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if len(req.Contents) != 3 {
		t.Fatalf("contents = %+v", req.Contents)
	}
	if req.Contents[0].Role != "user" || req.Contents[0].Parts[0].Text != "SYS\n\n---\n\nQ1" {
		t.Errorf("first turn = %+v", req.Contents[0])
	}
	if req.Contents[1].Role != "model" || req.Contents[2].Role != "user" {
		t.Errorf("roles = %s, %s", req.Contents[1].Role, req.Contents[2].Role)
	}
	if req.GenerationConfig.MaxOutputTokens != 1500 || req.GenerationConfig.Temperature != 0.7 {
		t.Errorf("generationConfig = %+v", req.GenerationConfig)
	}
	// The caller's slice is left untouched.
	if msgs[0].Content != "Q1" {
		t.Error("caller messages were modified")
	}
}

func TestFoldSystemEdgeCases(t *testing.T) {
	got := foldSystem(nil, "only system")
	if len(got) != 1 || got[0].Parts[0].Text != "only system" {
		t.Errorf("system only = %+v", got)
	}
	got = foldSystem([]Message{{Role: RoleSystem, Content: "x"}, {Role: RoleUser, Content: "hi"}}, "")
	if len(got) != 1 || got[0].Parts[0].Text != "hi" {
		t.Errorf("no system = %+v", got)
	}
}

func TestStatusTaxonomy(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   error
		msg    string
	}{
		{401, `{"error":{"message":"Incorrect API key"}}`, ErrAuth, "Incorrect API key"},
		{403, `{"error":{"status":"PERMISSION_DENIED"}}`, ErrPermission, "PERMISSION_DENIED"},
		{429, `{"error":{"message":"quota"}}`, ErrRateLimit, "quota"},
		{400, `{"error":{"message":"bad model"}}`, ErrInvalidRequest, "bad model"},
		{500, `upstream exploded`, ErrProvider, "Internal Server Error"},
		{503, `{"detail":"down"}`, ErrProvider, `{"detail":"down"}`},
	}
	for _, tt := range tests {
		for _, settings := range []models.AISettings{openaiSettings, geminiSettings} {
			f := &fakeProvider{status: tt.status, body: tt.body}
			c := testClient(t, f)
			_, err := c.Call(context.Background(), settings, []Message{{Role: RoleUser, Content: "x"}}, "")
			if !errors.Is(err, tt.kind) {
				t.Errorf("%s %d: err = %v, want %v", settings.Provider, tt.status, err, tt.kind)
				continue
			}
			var e *Error
			if !errors.As(err, &e) || e.Status != tt.status || e.Message != tt.msg || e.Provider != settings.Provider {
				t.Errorf("%s %d: error = %+v", settings.Provider, tt.status, e)
			}
		}
	}
}

func TestUnknownProvider(t *testing.T) {
	c := NewClient(Config{}, WithLogger(quiet))
	_, err := c.Call(context.Background(), models.AISettings{Provider: "unknown", OpenAIKey: "k"}, []Message{{Role: RoleUser, Content: "x"}}, "")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("err = %v, want ErrUnknownProvider", err)
	}
	if KindOf(err) != "unknown_provider" {
		t.Errorf("KindOf = %q", KindOf(err))
	}
}

func TestMissingCredential(t *testing.T) {
	f := &fakeProvider{status: 200, body: `{}`}
	c := testClient(t, f)
	s := geminiSettings
	s.GeminiKey = "   "
	_, err := c.Call(context.Background(), s, []Message{{Role: RoleUser, Content: "x"}}, "")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v", err)
	}
	if f.lastReq != nil {
		t.Error("request sent without a key")
	}
	if !strings.Contains(UserMessage(err), "Gemini manquante") {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}

func TestEmptyResponse(t *testing.T) {
	for _, body := range []string{`{"choices":[]}`, `{"choices":[{"message":{"content":"  "}}]}`} {
		f := &fakeProvider{status: 200, body: body}
		c := testClient(t, f)
		_, err := c.Call(context.Background(), openaiSettings, []Message{{Role: RoleUser, Content: "x"}}, "")
		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("body %s: err = %v", body, err)
		}
	}
}

func TestTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(Config{OpenAIEndpoint: srv.URL, Timeout: 50 * time.Millisecond, HTTPClient: srv.Client()}, WithLogger(quiet))
	_, err := c.Call(context.Background(), openaiSettings, []Message{{Role: RoleUser, Content: "x"}}, "")
	if !errors.Is(err, ErrProvider) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want provider error caused by deadline", err)
	}
}

func TestTransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	c := NewClient(Config{GeminiEndpoint: endpoint}, WithLogger(quiet))
	_, err := c.Call(context.Background(), geminiSettings, []Message{{Role: RoleUser, Content: "x"}}, "")
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("err = %v, want provider error", err)
	}
	if strings.Contains(err.Error(), geminiSettings.GeminiKey) {
		t.Errorf("error leaks the key: %v", err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		t.Errorf("cause still wraps the request URL: %v", uerr)
	}
}

func TestTestConnection(t *testing.T) {
	f := &fakeProvider{status: 200, body: `{"choices":[{"message":{"content":"OK"}}]}`}
	c := testClient(t, f)
	got, err := c.TestConnection(context.Background(), openaiSettings)
	if err != nil || got != "OK" {
		t.Fatalf("TestConnection = %q, %v", got, err)
	}
	if !strings.Contains(string(f.lastRaw), "uniquement") {
		t.Errorf("ping prompt = %s", f.lastRaw)
	}
}

func TestParseStructured(t *testing.T) {
	type out struct {
		Summary string   `json:"summary"`
		Todos   []string `json:"todos"`
	}
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"plain", `{"summary":"s","todos":["a"]}`, true},
		{"fenced", "```json\n{\"summary\":\"s\",\"todos\":[\"a\"]}\n```", true},
		{"bare fence", "```\n{\"summary\":\"s\",\"todos\":[\"a\"]}\n```", true},
		{"prose around", "Voici le JSON :\n{\"summary\":\"s\",\"todos\":[\"a\"]}\nBonne journée", true},
		{"no json", "Je ne peux pas répondre.", false},
		{"truncated", `{"summary":"s","todos":["a"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v out
			err := ParseStructured(tt.raw, &v)
			if tt.ok {
				if err != nil {
					t.Fatalf("ParseStructured: %v", err)
				}
				if v.Summary != "s" || len(v.Todos) != 1 {
					t.Errorf("decoded = %+v", v)
				}
				return
			}
			if !errors.Is(err, ErrMalformedOutput) {
				t.Errorf("err = %v, want ErrMalformedOutput", err)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	err := &Error{Kind: ErrRateLimit, Provider: models.ProviderOpenAI, Status: 429}
	if !strings.Contains(UserMessage(err), "platform.openai.com") {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
	err = &Error{Kind: ErrProvider, Provider: models.ProviderGemini, Status: 500, Message: "boom"}
	if UserMessage(err) != "❌ Erreur 500: boom" {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}
