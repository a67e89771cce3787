package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webintel"
	"github.com/fwojciec/webintel/colly"
	"github.com/fwojciec/webintel/crawl"
	"github.com/fwojciec/webintel/fs"
	"github.com/fwojciec/webintel/gemini"
	"github.com/fwojciec/webintel/goquery"
	"github.com/fwojciec/webintel/htmltomarkdown"
	webhttp "github.com/fwojciec/webintel/http"
	"github.com/fwojciec/webintel/ollama"
	"github.com/fwojciec/webintel/readability"
	"github.com/fwojciec/webintel/rod"
	webslog "github.com/fwojciec/webintel/slog"
	"github.com/fwojciec/webintel/sqlite"
	"github.com/fwojciec/webintel/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Data directory for crawl results and sessions. Set before calling Run().
	DataDir string

	// Stdin feeds the interactive chat command.
	Stdin io.Reader

	// SQLite database when the sqlite backend is selected.
	DB *sqlite.DB

	// Service overrides for end-to-end testing. When set, Run uses them
	// instead of constructing real implementations.
	Engine  webintel.Engine
	Agent   webintel.Agent
	Storage webintel.Storage

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DataDir: defaultDataDir(),
		Stdin:   os.Stdin,
	}
}

// Close gracefully stops the program, releasing resources in reverse
// acquisition order.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webintel"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webintel --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	defer m.Close()

	// Wire command-specific dependencies based on command
	switch cmd := strings.Fields(kongCtx.Command())[0]; cmd {
	case "crawl":
		dataDir := cli.Crawl.Output
		if dataDir == "" {
			dataDir = m.DataDir
		}
		storage, err := m.openStorage(deps, cli.Crawl.Storage, dataDir)
		if err != nil {
			return err
		}
		engine, err := m.openEngine(deps, cli.Crawl.Engine, cli.Crawl.Extractor)
		if err != nil {
			return err
		}
		deps.Storage = storage
		deps.Engine = engine

	case "ask", "chat":
		storageName, agentName, model := cli.Ask.Storage, cli.Ask.Agent, cli.Ask.Model
		if cmd == "chat" {
			storageName, agentName, model = cli.Chat.Storage, cli.Chat.Agent, cli.Chat.Model
		}
		storage, err := m.openStorage(deps, storageName, m.DataDir)
		if err != nil {
			return err
		}
		agent, err := m.openAgent(deps, agentName, model)
		if err != nil {
			return err
		}
		deps.Storage = storage
		deps.Agent = agent
	}

	return kongCtx.Run(deps)
}

// Registration tables mapping backend names to constructors. Lookups of
// unknown names fail fast listing the registered set.
var (
	engineRegistry = map[string]func(m *Main, deps *Dependencies, extractor webintel.Extractor) (webintel.Engine, error){
		"colly": newCollyEngine,
		"http":  newHTTPEngine,
		"rod":   newRodEngine,
	}

	agentRegistry = map[string]func(m *Main, deps *Dependencies, model string) (webintel.Agent, error){
		"gemini": newGeminiAgent,
		"ollama": newOllamaAgent,
	}

	storageRegistry = map[string]func(m *Main, deps *Dependencies, dataDir string) (webintel.Storage, error){
		"file":   newFileStorage,
		"sqlite": newSQLiteStorage,
	}

	extractorRegistry = map[string]func() webintel.Extractor{
		"trafilatura": func() webintel.Extractor { return trafilatura.NewExtractor() },
		"readability": func() webintel.Extractor { return readability.NewExtractor() },
	}
)

func availableNames[V any](registry map[string]V) string {
	return strings.Join(slices.Sorted(maps.Keys(registry)), ", ")
}

// openEngine builds the named crawl engine wrapped in logging. The Engine
// override, when set, is returned as-is.
func (m *Main) openEngine(deps *Dependencies, name, extractorName string) (webintel.Engine, error) {
	if m.Engine != nil {
		return m.Engine, nil
	}
	newExtractor, ok := extractorRegistry[extractorName]
	if !ok {
		return nil, webintel.Errorf(webintel.EINVALID, "unknown extractor %q (available: %s)", extractorName, availableNames(extractorRegistry))
	}
	newEngine, ok := engineRegistry[name]
	if !ok {
		return nil, webintel.Errorf(webintel.EINVALID, "unknown engine %q (available: %s)", name, availableNames(engineRegistry))
	}
	engine, err := newEngine(m, deps, newExtractor())
	if err != nil {
		return nil, err
	}
	return webslog.NewLoggingEngine(engine, deps.Logger), nil
}

// openAgent builds the named agent backend wrapped in logging. The Agent
// override, when set, is returned as-is.
func (m *Main) openAgent(deps *Dependencies, name, model string) (webintel.Agent, error) {
	if m.Agent != nil {
		return m.Agent, nil
	}
	newAgent, ok := agentRegistry[name]
	if !ok {
		return nil, webintel.Errorf(webintel.EINVALID, "unknown agent %q (available: %s)", name, availableNames(agentRegistry))
	}
	agent, err := newAgent(m, deps, model)
	if err != nil {
		return nil, err
	}
	return webslog.NewLoggingAgent(agent, deps.Logger), nil
}

// openStorage builds the named storage backend wrapped in logging. The
// Storage override, when set, is returned as-is.
func (m *Main) openStorage(deps *Dependencies, name, dataDir string) (webintel.Storage, error) {
	if m.Storage != nil {
		return m.Storage, nil
	}
	newStorage, ok := storageRegistry[name]
	if !ok {
		return nil, webintel.Errorf(webintel.EINVALID, "unknown storage %q (available: %s)", name, availableNames(storageRegistry))
	}
	storage, err := newStorage(m, deps, dataDir)
	if err != nil {
		return nil, err
	}
	return webslog.NewLoggingStorage(storage, deps.Logger), nil
}

func newCollyEngine(m *Main, deps *Dependencies, extractor webintel.Extractor) (webintel.Engine, error) {
	return &colly.Engine{
		Extractor: extractor,
		Converter: htmltomarkdown.NewConverter(),
	}, nil
}

func newHTTPEngine(m *Main, deps *Dependencies, extractor webintel.Extractor) (webintel.Engine, error) {
	fetcher := webhttp.NewFetcher()
	m.closers = append(m.closers, fetcher.Close)
	return newWalker(fetcher, extractor, "http", deps.Logger), nil
}

func newRodEngine(m *Main, deps *Dependencies, extractor webintel.Extractor) (webintel.Engine, error) {
	fetcher, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	m.closers = append(m.closers, fetcher.Close)
	return newWalker(fetcher, extractor, "rod", deps.Logger), nil
}

func newWalker(fetcher webintel.Fetcher, extractor webintel.Extractor, name string, logger *slog.Logger) *crawl.Walker {
	return &crawl.Walker{
		Fetcher:    webslog.NewLoggingFetcher(fetcher, logger),
		Extractor:  extractor,
		Converter:  htmltomarkdown.NewConverter(),
		Links:      goquery.NewLinkExtractor(),
		Limiter:    crawl.NewDomainLimiter(1.0), // 1 request per second per domain
		Sitemaps:   webslog.NewLoggingSitemapService(webhttp.NewSitemapService(nil), logger),
		EngineName: name,
	}
}

func newOllamaAgent(m *Main, deps *Dependencies, model string) (webintel.Agent, error) {
	var opts []ollama.Option
	if host := os.Getenv("WEBINTEL_OLLAMA_HOST"); host != "" {
		opts = append(opts, ollama.WithHost(host))
	}
	if model != "" {
		opts = append(opts, ollama.WithModel(model))
	}
	return ollama.NewAgent(opts...), nil
}

func newGeminiAgent(m *Main, deps *Dependencies, model string) (webintel.Agent, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(deps.Stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(deps.Ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	var opts []gemini.Option
	if model != "" {
		opts = append(opts, gemini.WithModel(model))
	}
	return gemini.NewAgent(client, opts...), nil
}

func newFileStorage(m *Main, deps *Dependencies, dataDir string) (webintel.Storage, error) {
	return fs.NewStorage(dataDir)
}

func newSQLiteStorage(m *Main, deps *Dependencies, dataDir string) (webintel.Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %q: %w", dataDir, err)
	}
	db := sqlite.NewDB(filepath.Join(dataDir, "webintel.db"))
	if err := db.Open(); err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Set WEBINTEL_DATA_DIR to use a different data directory")
		return nil, fmt.Errorf("failed to open database in %q: %w", dataDir, err)
	}
	m.DB = db
	m.closers = append(m.closers, db.Close)
	return sqlite.NewStorage(db), nil
}

func defaultDataDir() string {
	if dir := os.Getenv("WEBINTEL_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "webintel_data"
	}
	return filepath.Join(home, ".webintel")
}
