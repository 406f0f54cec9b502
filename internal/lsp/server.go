// Package lsp serves bslint findings to editors over the Language Server
// Protocol on stdio: diagnostics for open documents, quick fixes as code
// actions, a method outline and folding ranges.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"bslint/internal/config"
	"bslint/internal/rule"
	"bslint/internal/rules"
	"bslint/internal/trace"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Debounce delays analysis after an edit; <= 0 means 300ms.
	Debounce time.Duration
	// MaxDiagnostics caps published findings per document; <= 0 means 500.
	MaxDiagnostics int
	// Config, when set, is used for every document instead of the
	// configuration discovered next to it.
	Config   *config.Config
	Registry *rule.Registry
	// Log receives server messages; nil discards them.
	Log         io.Writer
	ToolVersion string
}

// Server handles stdio JSON-RPC for bslint.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	mu                sync.Mutex
	docs              map[string]*document
	configs           map[string]*config.Config // по каталогу документа
	workspaceRoot     string
	shutdownRequested bool

	debounce       time.Duration
	maxDiagnostics int
	fixedConfig    *config.Config
	registry       *rule.Registry
	toolVersion    string
	log            io.Writer

	baseCtx context.Context
	tracer  trace.Tracer
	wg      sync.WaitGroup
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 500
	}
	registry := opts.Registry
	if registry == nil {
		registry = rules.Default()
	}
	logw := opts.Log
	if logw == nil {
		logw = io.Discard
	}
	return &Server{
		in:             bufio.NewReader(in),
		out:            bufio.NewWriter(out),
		docs:           make(map[string]*document),
		configs:        make(map[string]*config.Config),
		debounce:       debounce,
		maxDiagnostics: maxDiagnostics,
		fixedConfig:    opts.Config,
		registry:       registry,
		toolVersion:    opts.ToolVersion,
		log:            logw,
		baseCtx:        context.Background(),
		tracer:         trace.Nop,
	}
}

// Run serves LSP requests until exit, end of input or ctx cancellation.
// Pending analyses are canceled before Run returns.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.stopTimers()
		s.wg.Wait()
	}()
	s.baseCtx = ctx
	s.tracer = trace.FromContext(ctx)

	msgs := make(chan *rpcMessage)
	readErr := make(chan error, 1)
	go s.readLoop(ctx, msgs, readErr)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if err := <-readErr; !errors.Is(err, io.EOF) {
					return err
				}
				return nil
			}
			if err := s.dispatch(msg); err != nil {
				return err
			}
		}
	}
}

// readLoop decodes frames until the input fails; malformed JSON gets a parse
// error reply and reading goes on.
func (s *Server) readLoop(ctx context.Context, msgs chan<- *rpcMessage, readErr chan<- error) {
	defer close(msgs)
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			readErr <- err
			return
		}
		msg := new(rpcMessage)
		if err := json.Unmarshal(payload, msg); err != nil {
			s.logf("failed to parse message: %v", err)
			if err := s.sendError(nil, codeParseError, "parse error"); err != nil {
				readErr <- err
				return
			}
			continue
		}
		select {
		case msgs <- msg:
		case <-ctx.Done():
			return
		}
	}
}

type handlerFunc func(s *Server, msg *rpcMessage) error

func ignore(*Server, *rpcMessage) error { return nil }

var handlers = map[string]handlerFunc{
	"initialize":                       (*Server).handleInitialize,
	"initialized":                      ignore,
	"$/cancelRequest":                  ignore,
	"$/setTrace":                       ignore,
	"shutdown":                         (*Server).handleShutdown,
	"workspace/didChangeConfiguration": (*Server).handleConfigurationChange,
	"workspace/didChangeWatchedFiles":  (*Server).handleConfigurationChange,
	"textDocument/didOpen":             (*Server).handleDidOpen,
	"textDocument/didChange":           (*Server).handleDidChange,
	"textDocument/didSave":             (*Server).handleDidSave,
	"textDocument/didClose":            (*Server).handleDidClose,
	"textDocument/codeAction":          (*Server).handleCodeAction,
	"textDocument/documentSymbol":      (*Server).handleDocumentSymbol,
	"textDocument/foldingRange":        (*Server).handleFoldingRange,
}

func (s *Server) dispatch(msg *rpcMessage) error {
	if msg.Method == "" {
		// ответы клиента на наши запросы: мы их не шлём
		return nil
	}
	trace.Point(s.tracer, trace.ScopeDriver, "lsp_"+msg.Method, "")
	isRequest := len(msg.ID) > 0

	s.mu.Lock()
	shutdown := s.shutdownRequested
	s.mu.Unlock()
	switch {
	case msg.Method == "exit" && shutdown:
		return ErrExit
	case msg.Method == "exit":
		return ErrExitWithoutShutdown
	case shutdown && isRequest:
		return s.sendError(msg.ID, codeInvalidRequest, "server is shutting down")
	case shutdown:
		return nil
	}

	h, ok := handlers[msg.Method]
	if !ok {
		if isRequest {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
	return h(s, msg)
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	params, err := decodeParams[initializeParams](msg)
	if err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()

	return s.sendResponse(msg.ID, initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    syncIncremental,
				Save:      saveOptions{IncludeText: true},
			},
			CodeActionProvider:     &codeActionOptions{CodeActionKinds: []string{kindQuickFix, kindFixAll}},
			DocumentSymbolProvider: true,
			FoldingRangeProvider:   true,
		},
		ServerInfo: &serverInfo{Name: "bslint", Version: s.toolVersion},
	})
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.stopTimers()
	return s.sendResponse(msg.ID, nil)
}

// handleConfigurationChange drops discovered configurations and re-checks
// every open document.
func (s *Server) handleConfigurationChange(*rpcMessage) error {
	s.mu.Lock()
	clear(s.configs)
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	for _, uri := range uris {
		s.scheduleAnalysis(uri, 0)
	}
	return nil
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	params, err := decodeParams[didOpenTextDocumentParams](msg)
	if err != nil {
		return s.invalidNotification(msg, err)
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if old := s.docs[uri]; old != nil {
		s.stopLocked(old)
	}
	s.docs[uri] = newDocument(uri, params.TextDocument.Version, params.TextDocument.Text)
	s.mu.Unlock()
	s.scheduleAnalysis(uri, 0)
	return nil
}

// editDocument runs edit on an open document under the lock; it reports
// false for documents the client never opened.
func (s *Server) editDocument(uri string, edit func(doc *document)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[uri]
	if doc == nil {
		return false
	}
	edit(doc)
	return true
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	params, err := decodeParams[didChangeTextDocumentParams](msg)
	if err != nil {
		return s.invalidNotification(msg, err)
	}
	uri := canonicalURI(params.TextDocument.URI)
	ok := s.editDocument(uri, func(doc *document) {
		doc.text = applyChanges(doc.text, params.ContentChanges)
		doc.version = params.TextDocument.Version
		doc.seq++
	})
	if !ok {
		s.logf("didChange for unknown document %s", uri)
		return nil
	}
	s.scheduleAnalysis(uri, s.debounce)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	params, err := decodeParams[didSaveTextDocumentParams](msg)
	if err != nil {
		return s.invalidNotification(msg, err)
	}
	uri := canonicalURI(params.TextDocument.URI)
	ok := s.editDocument(uri, func(doc *document) {
		if params.Text != nil && *params.Text != doc.text {
			doc.text = *params.Text
			doc.seq++
		}
	})
	if ok {
		s.scheduleAnalysis(uri, 0)
	}
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	params, err := decodeParams[didCloseTextDocumentParams](msg)
	if err != nil {
		return s.invalidNotification(msg, err)
	}
	uri := canonicalURI(params.TextDocument.URI)
	ok := s.editDocument(uri, func(doc *document) {
		s.stopLocked(doc)
		delete(s.docs, uri)
	})
	if !ok {
		return nil
	}
	// пустой список снимает диагностики закрытого файла в редакторе
	return s.sendPublish(uri, nil, nil)
}

// invalidNotification logs malformed notification params; requests get an error reply.
func (s *Server) invalidNotification(msg *rpcMessage, err error) error {
	s.logf("%s: invalid params: %v", msg.Method, err)
	if len(msg.ID) > 0 {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	return nil
}

func (s *Server) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		s.stopLocked(doc)
	}
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(s.log, "lsp: "+format+"\n", args...)
}
