package fetchcore

import "context"

// EngineKind identifies a concrete fetch strategy.
type EngineKind string

// Supported engine kinds. "auto" is a request-level hint meaning
// "let the escalation scheduler decide"; it is never an EngineUsed
// label on a result.
const (
	EngineAuto    EngineKind = "auto"
	EngineFast    EngineKind = "fast"
	EngineBrowser EngineKind = "browser"
	EngineStealth EngineKind = "stealth"
	EngineUnblock EngineKind = "unblock"
)

// ResponseType selects how FetchResult.Content is encoded.
type ResponseType string

// Supported response encodings.
const (
	ResponseText   ResponseType = "text"
	ResponseBase64 ResponseType = "base64"
)

// Format selects how the final page is represented in FetchResult.
type Format string

// Supported output formats.
const (
	FormatHTML        Format = "html"
	FormatHTMLStripped Format = "html-stripped"
	FormatMarkdown    Format = "markdown"
)

// FetchRequest describes a single fetch call, independent of which
// engine ultimately serves it.
type FetchRequest struct {
	URL           string
	Engine        EngineKind
	RenderJS      bool
	WaitForJS     bool
	RenderDelayMs int
	Proxy         string
	Headers       map[string]string
	Preset        string
	Format        Format
	ResponseType  ResponseType
}

// Validate returns an error if the request contains invalid fields.
func (r *FetchRequest) Validate() error {
	if r.URL == "" {
		return Errorf(EBADREQUEST, "url is required")
	}
	if r.RenderDelayMs < 0 {
		return Errorf(EBADREQUEST, "renderDelayMs must be non-negative")
	}
	switch r.Engine {
	case "", EngineAuto, EngineFast, EngineBrowser, EngineStealth, EngineUnblock:
	default:
		return Errorf(EBADREQUEST, "engine must be one of auto|fast|browser|stealth|unblock")
	}
	switch r.Format {
	case "", FormatHTML, FormatHTMLStripped, FormatMarkdown:
	default:
		return Errorf(EBADREQUEST, "format must be one of html|html-stripped|markdown")
	}
	switch r.ResponseType {
	case "", ResponseText, ResponseBase64:
	default:
		return Errorf(EBADREQUEST, "responseType must be one of text|base64")
	}
	return nil
}

// Normalize fills in defaults for optional fields.
func (r *FetchRequest) Normalize() {
	if r.Engine == "" {
		r.Engine = EngineAuto
	}
	if r.Format == "" {
		r.Format = FormatHTML
	}
	if r.ResponseType == "" {
		r.ResponseType = ResponseText
	}
}

// FetchResult is the outcome of a single engine fetch.
type FetchResult struct {
	StatusCode   int
	Content      string
	Markdown     string
	Headers      map[string]string
	URL          string
	EngineUsed   string
	ResponseType ResponseType
}

// Engine is the shared contract implemented by every fetch strategy:
// the fast HTTP engine, the pooled remote browser engine, the local
// stealth browser engine, and the remote unblock engine.
type Engine interface {
	// Fetch retrieves the page described by req. Implementations never
	// error on a non-2xx HTTP status from the target site; they error
	// only on transport/protocol failure, matching EngineError
	// semantics. Name identifies the engine for observability and
	// cache labels.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)

	// Name returns a stable identifier for this engine (e.g. "fast",
	// "browser", "stealth", "unblock").
	Name() string
}
