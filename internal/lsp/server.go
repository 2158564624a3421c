package lsp

import (
	"context"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	// регистрирует backend для commonlog
	_ "github.com/tliron/commonlog/simple"

	"rustidy/internal/config"
)

const serverName = "rustidy"

// ServerOptions configures the language server.
type ServerOptions struct {
	Version        string
	MaxDiagnostics int
	// Config, when set, is used for every document instead of discovering
	// rustidy.toml next to it.
	Config *config.Config
	// Verbosity of the commonlog backend; logs go to stderr.
	Verbosity int
}

type document struct {
	uri     string
	path    string
	text    string
	version int32
}

// Server is a stdio language server that formats Rust sources and
// publishes parse diagnostics for open documents.
type Server struct {
	handler protocol.Handler
	srv     *server.Server
	log     commonlog.Logger

	mu            sync.Mutex
	docs          map[string]*document
	workspaceRoot string
	shutdown      bool

	version        string
	maxDiagnostics int
	fixedConfig    *config.Config
	baseCtx        context.Context
}

// NewServer wires the protocol handler.
func NewServer(opts ServerOptions) *Server {
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	commonlog.Configure(opts.Verbosity, nil)
	s := &Server{
		log:            commonlog.GetLogger(serverName),
		docs:           make(map[string]*document),
		version:        opts.Version,
		maxDiagnostics: maxDiagnostics,
		fixedConfig:    opts.Config,
		baseCtx:        context.Background(),
	}
	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdownHandler,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.didOpen,
		TextDocumentDidChange:  s.didChange,
		TextDocumentDidClose:   s.didClose,
		TextDocumentDidSave:    s.didSave,
		TextDocumentFormatting: s.formatting,
	}
	s.srv = server.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio serves requests on stdin/stdout until the client exits.
func (s *Server) RunStdio(ctx context.Context) error {
	s.baseCtx = ctx
	return s.srv.RunStdio()
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root := ""
	if params.RootURI != nil && *params.RootURI != "" {
		root = uriToPath(*params.RootURI)
	}
	if root == "" && params.RootPath != nil {
		root = *params.RootPath
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.DocumentFormattingProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	s.log.Infof("ready, workspace %q", s.root())
	return nil
}

func (s *Server) shutdownHandler(_ *glsp.Context) error {
	s.mu.Lock()
	s.shutdown = true
	s.docs = make(map[string]*document)
	s.mu.Unlock()
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	doc := &document{uri: item.URI, path: uriToPath(item.URI), text: item.Text, version: item.Version}
	s.mu.Lock()
	s.docs[item.URI] = doc
	s.mu.Unlock()
	s.publish(ctx, *doc)
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.mu.Lock()
	doc, ok := s.docs[params.TextDocument.URI]
	if !ok {
		s.mu.Unlock()
		s.log.Warningf("change for a document that is not open: %s", params.TextDocument.URI)
		return nil
	}
	doc.text = applyChanges(doc.text, params.ContentChanges)
	doc.version = params.TextDocument.Version
	snapshot := *doc
	s.mu.Unlock()
	s.publish(ctx, snapshot)
	return nil
}

func (s *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.mu.Lock()
	doc, ok := s.docs[params.TextDocument.URI]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if params.Text != nil {
		doc.text = *params.Text
	}
	snapshot := *doc
	s.mu.Unlock()
	s.publish(ctx, snapshot)
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
	// снимаем опубликованные диагностики
	notify(ctx, protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) document(uri string) (document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return document{}, false
	}
	return *doc, true
}

func (s *Server) root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workspaceRoot
}

// configFor returns the configuration governing doc. Broken config files
// are logged and the defaults are used.
func (s *Server) configFor(doc document) config.Config {
	if s.fixedConfig != nil {
		return *s.fixedConfig
	}
	dir := startDir(doc.path)
	if dir == "" {
		dir = s.root()
	}
	if dir == "" {
		return config.Default()
	}
	cfg, err := config.Discover(dir)
	if err != nil {
		s.log.Warningf("config for %s: %v", doc.uri, err)
		return config.Default()
	}
	return cfg
}

func notify(ctx *glsp.Context, method string, params any) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(method, params)
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
