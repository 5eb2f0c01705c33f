package router

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ai-docassist/pkg/client/api"

	"go.uber.org/zap"
)

// the server-side logger plugs in directly
var _ Logger = (*zap.SugaredLogger)(nil)

type staticToken string

func (s staticToken) AccessToken() (string, bool) { return string(s), true }

type generalCall struct {
	Query     string
	AgentType string
}

// fakeAgents is a scriptable stand-in for the /agent endpoints. Each
// endpoint records the calls it receives; handlers default to success and
// can be overridden per test.
type fakeAgents struct {
	mu            sync.Mutex
	bearer        string
	documentCalls []string
	generalCalls  []generalCall
	autoCalls     []string

	onDocument func(w http.ResponseWriter, query string)
	onGeneral  func(w http.ResponseWriter, call generalCall)
	onAuto     func(w http.ResponseWriter, query string)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeAgents) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/agent/document-query", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &req)

		f.mu.Lock()
		f.bearer = r.Header.Get("Authorization")
		f.documentCalls = append(f.documentCalls, req.Query)
		handle := f.onDocument
		f.mu.Unlock()

		if handle != nil {
			handle(w, req.Query)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":          true,
			"response":         "answer from documents",
			"sources":          []string{"report.pdf"},
			"documents_found":  2,
			"document_matches": 3,
		})
	})

	mux.HandleFunc("/agent/query", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string `json:"query"`
			AgentType string `json:"agent_type"`
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &req)
		call := generalCall{Query: req.Query, AgentType: req.AgentType}

		f.mu.Lock()
		f.bearer = r.Header.Get("Authorization")
		f.generalCalls = append(f.generalCalls, call)
		handle := f.onGeneral
		f.mu.Unlock()

		if handle != nil {
			handle(w, call)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"response": "answer from " + req.AgentType,
		})
	})

	mux.HandleFunc("/agent/auto-query", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &req)

		f.mu.Lock()
		f.bearer = r.Header.Get("Authorization")
		f.autoCalls = append(f.autoCalls, req.Query)
		handle := f.onAuto
		f.mu.Unlock()

		if handle != nil {
			handle(w, req.Query)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"response": "auto answer",
			"agent_selection": map[string]interface{}{
				"selected_agent": "research",
				"confidence":     0.82,
			},
		})
	})

	return mux
}

func newTestRouter(t *testing.T, f *fakeAgents) (*Router, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	r := New(api.New(srv.URL), staticToken("test-token"), WithLogger(NewStdLogger(log.New(io.Discard, "", 0))))
	return r, srv
}

func TestResolveExplicitDocumentQueryIgnoresContext(t *testing.T) {
	f := &fakeAgents{}
	r, _ := newTestRouter(t, f)

	// No completed documents, the tag alone must force the document path.
	res := r.Resolve(context.Background(), "[Document Query] summarize the report", Context{HasCompletedDocuments: false})

	if len(f.documentCalls) != 1 {
		t.Fatalf("document endpoint calls = %d, want 1", len(f.documentCalls))
	}
	if f.documentCalls[0] != "summarize the report" {
		t.Errorf("forwarded query = %q, want tag stripped", f.documentCalls[0])
	}
	if f.bearer != "Bearer test-token" {
		t.Errorf("bearer = %q, want access token attached", f.bearer)
	}
	if res.AgentInfo.SelectedAgent != AgentDocument {
		t.Errorf("SelectedAgent = %v, want %v", res.AgentInfo.SelectedAgent, AgentDocument)
	}
	if res.AgentInfo.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", res.AgentInfo.Confidence)
	}
	if len(res.AgentInfo.Sources) != 1 || res.AgentInfo.Sources[0] != "report.pdf" {
		t.Errorf("Sources = %v, want [report.pdf]", res.AgentInfo.Sources)
	}
	if res.AgentInfo.SearchResultsCount != 2 {
		t.Errorf("SearchResultsCount = %d, want 2", res.AgentInfo.SearchResultsCount)
	}
}

func TestResolveExplicitDocumentQueryFailure(t *testing.T) {
	f := &fakeAgents{
		onDocument: func(w http.ResponseWriter, query string) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": false,
				"error":   "index unavailable",
			})
		},
	}
	r, _ := newTestRouter(t, f)

	res := r.Resolve(context.Background(), "[Document Query] anything", Context{})

	if res.AgentInfo.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", res.AgentInfo.Confidence)
	}
	if res.Response == "" {
		t.Error("failure result must carry a displayable message")
	}
	// Explicit document mode is terminal: no fallthrough to auto-select.
	if len(f.autoCalls) != 0 {
		t.Errorf("auto-select calls = %d, want 0", len(f.autoCalls))
	}
}

func TestResolveImageProcessingTag(t *testing.T) {
	f := &fakeAgents{}
	r, _ := newTestRouter(t, f)

	res := r.Resolve(context.Background(), "[Image Processing] describe this", Context{})

	if len(f.generalCalls) != 1 {
		t.Fatalf("general endpoint calls = %d, want 1", len(f.generalCalls))
	}
	if f.generalCalls[0].AgentType != string(AgentMultimodal) {
		t.Errorf("agent_type = %q, want %q", f.generalCalls[0].AgentType, AgentMultimodal)
	}
	if f.generalCalls[0].Query != "describe this" {
		t.Errorf("forwarded query = %q, want tag stripped", f.generalCalls[0].Query)
	}
	if res.AgentInfo.SelectedAgent != AgentMultimodal {
		t.Errorf("SelectedAgent = %v, want %v", res.AgentInfo.SelectedAgent, AgentMultimodal)
	}
}

func TestResolveImplicitDocumentFallsThrough(t *testing.T) {
	f := &fakeAgents{
		onDocument: func(w http.ResponseWriter, query string) {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "vector store down",
			})
		},
	}
	r, _ := newTestRouter(t, f)

	res := r.Resolve(context.Background(), "what changed last quarter", Context{HasCompletedDocuments: true})

	if len(f.documentCalls) != 1 {
		t.Fatalf("document endpoint calls = %d, want 1 (implicit attempt)", len(f.documentCalls))
	}
	if len(f.autoCalls) != 1 {
		t.Fatalf("auto-select calls = %d, want 1 (silent fallthrough)", len(f.autoCalls))
	}
	if res.AgentInfo.SelectedAgent == AgentDocument {
		t.Errorf("SelectedAgent = document after the document call failed")
	}
	if res.AgentInfo.SelectedAgent != AgentResearch {
		t.Errorf("SelectedAgent = %v, want server-reported research", res.AgentInfo.SelectedAgent)
	}
}

func TestResolveImplicitDocumentSuccess(t *testing.T) {
	f := &fakeAgents{}
	r, _ := newTestRouter(t, f)

	res := r.Resolve(context.Background(), "what changed last quarter", Context{HasCompletedDocuments: true})

	if len(f.autoCalls) != 0 {
		t.Errorf("auto-select calls = %d, want 0 when implicit document path succeeds", len(f.autoCalls))
	}
	if res.AgentInfo.SelectedAgent != AgentDocument {
		t.Errorf("SelectedAgent = %v, want %v", res.AgentInfo.SelectedAgent, AgentDocument)
	}
}

func TestResolveAutoSelectVerbatim(t *testing.T) {
	f := &fakeAgents{}
	r, _ := newTestRouter(t, f)

	res := r.Resolve(context.Background(), "hello", Context{})

	if len(f.documentCalls) != 0 {
		t.Errorf("document calls = %d, want 0 without documents or tag", len(f.documentCalls))
	}
	if res.AgentInfo.SelectedAgent != AgentResearch {
		t.Errorf("SelectedAgent = %v, want research (verbatim)", res.AgentInfo.SelectedAgent)
	}
	if res.AgentInfo.Confidence != 0.82 {
		t.Errorf("Confidence = %v, want 0.82 (verbatim)", res.AgentInfo.Confidence)
	}
	if len(res.AgentInfo.Sources) != 1 || res.AgentInfo.Sources[0] != defaultSource {
		t.Errorf("Sources = %v, want default [%s]", res.AgentInfo.Sources, defaultSource)
	}
}

func TestResolveAutoSelectFailureUsesLightweightOnce(t *testing.T) {
	f := &fakeAgents{
		onAuto: func(w http.ResponseWriter, query string) {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "selector crashed",
			})
		},
	}
	r, _ := newTestRouter(t, f)

	res := r.Resolve(context.Background(), "hello", Context{})

	if len(f.generalCalls) != 1 {
		t.Fatalf("lightweight calls = %d, want exactly 1", len(f.generalCalls))
	}
	if f.generalCalls[0].AgentType != string(AgentLightweight) {
		t.Errorf("agent_type = %q, want %q", f.generalCalls[0].AgentType, AgentLightweight)
	}
	if !strings.HasPrefix(res.Response, FallbackPrefix) {
		t.Errorf("response %q missing %q prefix", res.Response, FallbackPrefix)
	}
	if res.AgentInfo.SelectedAgent != AgentLightweight {
		t.Errorf("SelectedAgent = %v, want %v", res.AgentInfo.SelectedAgent, AgentLightweight)
	}
	if res.AgentInfo.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", res.AgentInfo.Confidence)
	}
}

func TestResolveLightweightFailureIsApologetic(t *testing.T) {
	fail := func(w http.ResponseWriter, _ string) {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false, "error": "down",
		})
	}
	f := &fakeAgents{
		onAuto: fail,
		onGeneral: func(w http.ResponseWriter, _ generalCall) {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false, "error": "down",
			})
		},
	}
	r, _ := newTestRouter(t, f)

	res := r.Resolve(context.Background(), "hello", Context{})

	if res.AgentInfo.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", res.AgentInfo.Confidence)
	}
	if res.AgentInfo.SelectedAgent != AgentLightweight {
		t.Errorf("SelectedAgent = %v, want %v", res.AgentInfo.SelectedAgent, AgentLightweight)
	}
	if res.Response == "" {
		t.Error("terminal failure must carry a displayable message")
	}
	if strings.HasPrefix(res.Response, FallbackPrefix) {
		t.Error("failed fallback must not carry the fallback prefix")
	}
}

func TestResolveBackendUnreachable(t *testing.T) {
	f := &fakeAgents{}
	srv := httptest.NewServer(f.handler())
	r := New(api.New(srv.URL), staticToken("test-token"), WithLogger(NewStdLogger(log.New(io.Discard, "", 0))))
	srv.Close() // every call now fails at the transport level

	res := r.Resolve(context.Background(), "are you there?", Context{HasCompletedDocuments: true})

	if res.Response == "" {
		t.Fatal("offline resolve must still produce a displayable response")
	}
	if !strings.Contains(res.Response, "are you there?") {
		t.Errorf("canned response %q does not echo the message", res.Response)
	}
	if res.AgentInfo.SelectedAgent != AgentLightweight {
		t.Errorf("SelectedAgent = %v, want %v", res.AgentInfo.SelectedAgent, AgentLightweight)
	}
	if res.AgentInfo.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", res.AgentInfo.Confidence)
	}
}
