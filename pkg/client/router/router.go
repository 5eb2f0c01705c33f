package router

import (
	"context"
	"fmt"
	"log"

	"ai-docassist/pkg/client/api"
)

// AgentType identifies which downstream agent produced a response.
type AgentType string

const (
	AgentMultimodal  AgentType = "multimodal"
	AgentResearch    AgentType = "research"
	AgentDocument    AgentType = "document"
	AgentChat        AgentType = "chat"
	AgentLightweight AgentType = "lightweight"
)

// FallbackPrefix marks responses that came from the lightweight fallback
// after automatic selection failed.
const FallbackPrefix = "[Fallback Response]"

// defaultSource is attached when the server reports no sources.
const defaultSource = "general_knowledge"

// AgentInfo describes how a response was produced.
type AgentInfo struct {
	SelectedAgent      AgentType `json:"selected_agent"`
	Confidence         float64   `json:"confidence"`
	Sources            []string  `json:"sources,omitempty"`
	SearchResultsCount int       `json:"search_results_count,omitempty"`
}

// Result is the single normalized shape every resolve path produces.
type Result struct {
	Response  string    `json:"response"`
	AgentInfo AgentInfo `json:"agent_info"`
}

// Context is the upload state the caller provides per query.
type Context struct {
	// HasCompletedDocuments is true when at least one uploaded document
	// reached the completed state.
	HasCompletedDocuments bool
}

// TokenSource supplies the current bearer access token. *auth.Manager
// satisfies it. The token is captured before every HTTP call, so a
// background refresh landing mid-resolve is harmless.
type TokenSource interface {
	AccessToken() (string, bool)
}

// Router decides which agent endpoint answers a message and normalizes the
// per-endpoint response shapes into Result. Resolve never fails: every
// error path degrades to a displayable Result with confidence 0. The
// router never refreshes tokens; a 401 on any step is that step's failure.
type Router struct {
	api    *api.Client
	tokens TokenSource
	logger Logger
}

// Logger is the leveled surface the router logs fallback steps through.
// zap.SugaredLogger satisfies it.
type Logger interface {
	Warnf(template string, args ...interface{})
}

type stdLogger struct{ l *log.Logger }

func (s stdLogger) Warnf(template string, args ...interface{}) { s.l.Printf(template, args...) }

// NewStdLogger adapts a stdlib logger to the Logger interface.
func NewStdLogger(l *log.Logger) Logger { return stdLogger{l: l} }

// Option configures optional Router behavior.
type Option func(*Router)

// WithLogger replaces the default stderr logger.
func WithLogger(l Logger) Option {
	return func(r *Router) { r.logger = l }
}

// New wires a router over the API client and a token source.
func New(apiClient *api.Client, tokens TokenSource, opts ...Option) *Router {
	r := &Router{
		api:    apiClient,
		tokens: tokens,
		logger: stdLogger{l: log.Default()},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) token() string {
	tok, _ := r.tokens.AccessToken()
	return tok
}

// Resolve routes a message through the agent chain, in strict order:
//
//  1. [Document Query] tag → document endpoint, failure is terminal.
//  2. [Image Processing] tag → general endpoint as multimodal, failure is
//     terminal.
//  3. completed documents present → document endpoint; failure falls
//     through silently.
//  4. automatic selection endpoint, server's choice reported verbatim.
//  5. lightweight fallback when 4 fails, response marked with
//     FallbackPrefix.
//  6. backend unreachable → locally synthesized response.
func (r *Router) Resolve(ctx context.Context, message string, qctx Context) Result {
	parsed := Parse(message)

	switch parsed.Mode {
	case ModeDocument:
		return r.documentQuery(ctx, parsed.Clean)
	case ModeImage:
		return r.imageQuery(ctx, parsed.Clean)
	}

	if qctx.HasCompletedDocuments {
		if res, ok := r.tryDocumentQuery(ctx, parsed.Clean); ok {
			return res
		}
		// Silent degradation: the user did not ask for document mode, so a
		// document failure must not surface here.
	}

	return r.autoQuery(ctx, parsed.Clean)
}

// documentQuery is the explicit [Document Query] path. The user asked for
// document mode, so failure produces an explanatory terminal result.
func (r *Router) documentQuery(ctx context.Context, query string) Result {
	resp, err := r.api.DocumentQuery(ctx, r.token(), query, 0)
	if err != nil || !resp.Success {
		r.logger.Warnf("[ROUTER] document query failed: %v", failure(err, resp.AppError))
		return Result{
			Response: "I couldn't search your documents right now. Please try again in a moment.",
			AgentInfo: AgentInfo{
				SelectedAgent: AgentDocument,
				Confidence:    0,
			},
		}
	}
	return adaptDocument(resp)
}

// imageQuery is the explicit [Image Processing] path, handled symmetrically
// to documentQuery.
func (r *Router) imageQuery(ctx context.Context, query string) Result {
	resp, err := r.api.AgentQuery(ctx, r.token(), query, string(AgentMultimodal))
	if err != nil || !resp.Success {
		r.logger.Warnf("[ROUTER] image query failed: %v", failure(err, resp.AppError))
		return Result{
			Response: "I couldn't analyze that image request right now. Please try again in a moment.",
			AgentInfo: AgentInfo{
				SelectedAgent: AgentMultimodal,
				Confidence:    0,
			},
		}
	}
	return adaptGeneral(AgentMultimodal, resp, 1.0)
}

// tryDocumentQuery is the implicit document-context path; ok is false on
// any failure so Resolve can fall through to automatic selection.
func (r *Router) tryDocumentQuery(ctx context.Context, query string) (Result, bool) {
	resp, err := r.api.DocumentQuery(ctx, r.token(), query, 0)
	if err != nil || !resp.Success {
		r.logger.Warnf("[ROUTER] implicit document query failed, falling through: %v", failure(err, resp.AppError))
		return Result{}, false
	}
	return adaptDocument(resp), true
}

// autoQuery asks the server to pick the agent; any failure enters the
// lightweight fallback.
func (r *Router) autoQuery(ctx context.Context, query string) Result {
	resp, err := r.api.AutoQuery(ctx, r.token(), query)
	if err != nil || !resp.Success {
		r.logger.Warnf("[ROUTER] auto-select failed: %v", failure(err, resp.AppError))
		return r.lightweightFallback(ctx, query)
	}
	return adaptAuto(resp)
}

// lightweightFallback is the last agent tried. An HTTP or application
// failure yields the apologetic terminal result; a transport failure means
// the backend is unreachable and yields the locally synthesized response.
func (r *Router) lightweightFallback(ctx context.Context, query string) Result {
	resp, err := r.api.AgentQuery(ctx, r.token(), query, string(AgentLightweight))
	if err == nil && resp.Success {
		res := adaptGeneral(AgentLightweight, resp, 1.0)
		res.Response = FallbackPrefix + " " + res.Response
		return res
	}

	r.logger.Warnf("[ROUTER] lightweight fallback failed: %v", failure(err, resp.AppError))

	if api.IsTransport(err) {
		return canned(query)
	}
	return Result{
		Response: "I'm sorry, I couldn't process your request right now. Please try again later.",
		AgentInfo: AgentInfo{
			SelectedAgent: AgentLightweight,
			Confidence:    0,
		},
	}
}

// canned is the offline catch-all: the backend never answered, so the
// client synthesizes a response echoing the message.
func canned(query string) Result {
	return Result{
		Response: fmt.Sprintf("I received your message: %q. The assistant service is unreachable right now, so I can't give you a full answer. Please try again shortly.", query),
		AgentInfo: AgentInfo{
			SelectedAgent: AgentLightweight,
			Confidence:    0,
		},
	}
}

// --- Adapters: one per endpoint shape ---

func adaptDocument(resp *api.DocumentQueryResponse) Result {
	return Result{
		Response: resp.Response,
		AgentInfo: AgentInfo{
			SelectedAgent:      AgentDocument,
			Confidence:         1.0,
			Sources:            resp.Sources,
			SearchResultsCount: resp.DocumentsFound,
		},
	}
}

func adaptGeneral(agent AgentType, resp *api.AgentQueryResponse, confidence float64) Result {
	return Result{
		Response: resp.Response,
		AgentInfo: AgentInfo{
			SelectedAgent: agent,
			Confidence:    confidence,
		},
	}
}

func adaptAuto(resp *api.AutoQueryResponse) Result {
	sources := resp.Sources
	if len(sources) == 0 {
		sources = []string{defaultSource}
	}
	return Result{
		Response: resp.Response,
		AgentInfo: AgentInfo{
			SelectedAgent: AgentType(resp.AgentSelection.SelectedAgent),
			Confidence:    resp.AgentSelection.Confidence,
			Sources:       sources,
		},
	}
}

// failure merges transport/status errors and application-level errors into
// one loggable value. appErr is only consulted when err is nil.
func failure(err error, appErr func() string) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("application error: %s", appErr())
}
