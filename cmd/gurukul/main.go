// Package main is the Gurukul CLI entry point.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gurukul-labs/gurukul/internal/answer"
	"github.com/gurukul-labs/gurukul/internal/bundle"
	"github.com/gurukul-labs/gurukul/internal/config"
	"github.com/gurukul-labs/gurukul/internal/embedding"
	"github.com/gurukul-labs/gurukul/internal/ingest"
	"github.com/gurukul-labs/gurukul/internal/llm"
	"github.com/gurukul-labs/gurukul/internal/models"
	"github.com/gurukul-labs/gurukul/internal/retrieval"
	"github.com/gurukul-labs/gurukul/internal/server"
	"github.com/gurukul-labs/gurukul/internal/validate"
	"github.com/gurukul-labs/gurukul/internal/watcher"
	"github.com/gurukul-labs/gurukul/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/gurukul/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "gurukul serve" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Local development keeps API endpoints and keys in .env; absence is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "serve":
		runServe()
	case "ingest":
		runIngest()
	case "export":
		runExport()
	case "retrieve":
		runRetrieve()
	case "ask":
		runAsk()
	case "inspect":
		runInspect()
	case "version", "--version", "-v":
		fmt.Printf("gurukul version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: gurukul <command> [flags]

Commands:
  serve      run the retrieval HTTP server over a published bundle
  ingest     validate a chunk JSONL file and stage it for export
  export     embed staged chunks and publish a versioned bundle
  retrieve   query a running server (or a bundle directly) for chunks
  ask        ask a question and get a cited answer or a refusal
  inspect    print a bundle's manifest and counts
  version    print the version

Run "gurukul <command> -h" for command flags.
`)
}

// apiKey returns the key for the embedding and LLM endpoints. Local
// Ollama-compatible servers accept any non-empty token.
func apiKey() string {
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		return k
	}
	return "ollama"
}

// runtime bundles the collaborators the serve and direct-query paths share.
type runtime struct {
	Embedder  embedding.Embedder
	Completer llm.Completer
	Engine    *retrieval.Engine
	Composer  *answer.Composer
}

func (r *runtime) Close() {
	if r.Embedder != nil {
		_ = r.Embedder.Close()
	}
	if r.Completer != nil {
		_ = r.Completer.Close()
	}
}

func buildRuntime(cfg *config.Config, logger *zap.Logger) (*runtime, error) {
	embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding.BaseURL, apiKey(), cfg.Embedding.Model, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	completer, err := llm.NewOpenAICompleter(cfg.LLM.BaseURL, apiKey(), cfg.LLM.Model)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("create completer: %w", err)
	}
	engine := retrieval.NewEngine(&cfg.Retrieval, retrieval.WithLogger(logger))
	composer := answer.NewComposer(
		completer,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
		answer.WithLogger(logger),
	)
	return &runtime{
		Embedder:  embedder,
		Completer: completer,
		Engine:    engine,
		Composer:  composer,
	}, nil
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	b, err := bundle.Open(cfg.Bundle.Path)
	if err != nil {
		logger.Fatal("Failed to open bundle", zap.String("path", cfg.Bundle.Path), zap.Error(err))
	}
	logger.Info("bundle loaded",
		zap.String("version", b.Version),
		zap.Int("chunks", b.Count()),
		zap.String("model", b.ModelName()),
		zap.Int("dim", b.Dim()),
	)

	rt, err := buildRuntime(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer rt.Close()

	srv := server.NewServer(b, rt.Engine, rt.Composer, rt.Embedder, cfg, logger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Bundle.Watch {
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		w := watcher.NewWatcher(cfg.Bundle.Path, func() {
			if err := srv.Reload(); err != nil {
				logger.Warn("bundle reload failed", zap.Error(err))
			}
		}, watchOpts...)
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start bundle watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// readChunkLines decodes a JSONL file into raw records. Numbers are kept
// as json.Number so integer fields survive undamaged.
func readChunkLines(r io.Reader) ([]map[string]any, error) {
	var raws []map[string]any
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		raws = append(raws, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return raws, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	clearFirst := fs.Bool("clear", false, "clear previously staged chunks first")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: gurukul ingest [flags] <chunks.jsonl>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open input: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	raws, err := readChunkLines(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		os.Exit(1)
	}
	chunks, err := validate.Batch(raws)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed, nothing staged:\n%v\n", err)
		os.Exit(1)
	}

	store, err := ingest.Open(cfg.Ingest.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open staging store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if *clearFirst {
		if err := store.Clear(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to clear staging store: %v\n", err)
			os.Exit(1)
		}
	}
	inserted, err := store.PutBatch(ctx, chunks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stage chunks: %v\n", err)
		os.Exit(1)
	}
	total, err := store.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to count staged chunks: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("validated %d chunks, staged %d new (%d duplicates), %d total staged\n",
		len(chunks), inserted, len(chunks)-inserted, total)
}

// deriveScope fills the manifest's curriculum scope from the staged chunks.
// Class, subject, and language must be uniform; chapter is recorded only
// when every chunk shares one.
func deriveScope(chunks []*models.Chunk, m *models.Manifest) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to derive scope from")
	}
	first := chunks[0]
	m.Class = first.Class
	m.Subject = first.Subject
	m.Language = first.Language
	m.Chapter = first.Chapter
	for _, c := range chunks[1:] {
		if c.Class != first.Class || c.Subject != first.Subject || c.Language != first.Language {
			return fmt.Errorf("chunk %s scope (%d/%s/%s) differs from %s (%d/%s/%s); one bundle covers one class, subject, and language",
				c.ID, c.Class, c.Subject, c.Language, first.ID, first.Class, first.Subject, first.Language)
		}
		if c.Chapter != first.Chapter {
			m.Chapter = 0
		}
	}
	return nil
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outDir := fs.String("out", "", "bundle output directory (default: bundle path from config)")
	bundleVersion := fs.String("version", "", "bundle version string (required)")
	chunkStrategy := fs.String("chunk-strategy", "structure_aware", "chunking strategy recorded in the manifest")
	_ = fs.Parse(os.Args[2:])

	if *bundleVersion == "" {
		fmt.Println("Usage: gurukul export -version <version> [flags]")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	dir := *outDir
	if dir == "" {
		dir = cfg.Bundle.Path
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := ingest.Open(cfg.Ingest.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open staging store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	chunks, err := store.All(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read staged chunks: %v\n", err)
		os.Exit(1)
	}
	if len(chunks) == 0 {
		fmt.Fprintln(os.Stderr, "No staged chunks; run \"gurukul ingest\" first")
		os.Exit(1)
	}

	manifest := models.Manifest{
		ChunkStrategy: *chunkStrategy,
		Version:       *bundleVersion,
	}
	if err := deriveScope(chunks, &manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}

	embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding.BaseURL, apiKey(), cfg.Embedding.Model, cfg.Embedding.Dimensions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create embedder: %v\n", err)
		os.Exit(1)
	}
	defer embedder.Close()

	if err := embedChunks(ctx, embedder, chunks, cfg.Embedding.BatchSize, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Embedding failed: %v\n", err)
		os.Exit(1)
	}

	model := models.ModelDescriptor{Name: embedder.ModelName(), Dim: embedder.Dimensions()}
	if err := bundle.Write(dir, chunks, model, manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write bundle: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("published bundle %s: %d chunks, model %s (dim %d) at %s\n",
		*bundleVersion, len(chunks), model.Name, model.Dim, dir)
}

// embedChunks attaches embeddings to chunks in request-sized batches.
func embedChunks(ctx context.Context, embedder embedding.Embedder, chunks []*models.Chunk, batchSize int, logger *zap.Logger) error {
	if batchSize <= 0 {
		batchSize = 1
	}
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		vecs, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		for i, v := range vecs {
			chunks[start+i].Embedding = v
		}
		logger.Debug("embedded batch",
			zap.Int("from", start),
			zap.Int("to", end),
			zap.Int("total", len(chunks)),
		)
	}
	return nil
}

// queryRequest is the wire form posted to /api/v1/retrieve and /api/v1/ask.
type queryRequest struct {
	Question  string    `json:"question,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	Class     int       `json:"class"`
	Subject   string    `json:"subject"`
	Language  string    `json:"language"`
	Chapter   *int      `json:"chapter,omitempty"`
	K         int       `json:"k,omitempty"`
}

// buildQuestion joins all positional args with spaces so multi-word
// questions work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// queryFlags declares the scope flags shared by retrieve and ask.
func queryFlags(fs *flag.FlagSet) (class *int, subject, language *string, chapter *int, k *int) {
	class = fs.Int("class", 0, "class (grade) to search in, e.g. 6")
	subject = fs.String("subject", "", "subject to search in, e.g. science")
	language = fs.String("language", "en", "content language")
	chapter = fs.Int("chapter", 0, "restrict to one chapter (0 = whole subject)")
	k = fs.Int("k", 0, "number of chunks to retrieve (0 = server default)")
	return
}

func buildQueryRequest(question string, class int, subject, language string, chapter, k int) *queryRequest {
	req := &queryRequest{
		Question: question,
		Class:    class,
		Subject:  subject,
		Language: language,
		K:        k,
	}
	if chapter > 0 {
		req.Chapter = &chapter
	}
	return req
}

func postJSON[T any](serverURL, path string, req any) (*T, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func runRetrieve() {
	fs := flag.NewFlagSet("retrieve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = open the bundle directly)")
	class, subject, language, chapter, k := queryFlags(fs)
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Println("Usage: gurukul retrieve [flags] <question>")
		os.Exit(1)
	}
	req := buildQueryRequest(question, *class, *subject, *language, *chapter, *k)

	var result *models.RetrievalResult
	if *serverURL != "" {
		res, err := postJSON[models.RetrievalResult](*serverURL, "/api/v1/retrieve", req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Retrieve failed: %v\n", err)
			os.Exit(1)
		}
		result = res
	} else {
		res, err := retrieveDirect(*configPath, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Retrieve failed: %v\n", err)
			os.Exit(1)
		}
		result = res
	}

	switch *outputFormat {
	case "json":
		writeJSONOut(result)
	case "text":
		if !result.OK() {
			fmt.Println("status: refer_teacher (no chunk passed the confidence gate)")
			return
		}
		for _, c := range result.Chunks {
			fmt.Printf("%2d. %s  score=%.4f\n", c.Rank+1, c.ID, c.Score)
			fmt.Printf("    %s\n", firstLine(c.Text))
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// retrieveDirect answers a retrieve request against the configured bundle
// without a running server.
func retrieveDirect(configPath string, req *queryRequest) (*models.RetrievalResult, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	b, err := bundle.Open(cfg.Bundle.Path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding.BaseURL, apiKey(), cfg.Embedding.Model, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	defer embedder.Close()

	ctx := context.Background()
	vec, err := embedder.Embed(ctx, req.Question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	engine := retrieval.NewEngine(&cfg.Retrieval, retrieval.WithLogger(logger))
	return engine.Search(ctx, b, &models.Query{
		Embedding: vec,
		Class:     req.Class,
		Subject:   req.Subject,
		Language:  req.Language,
		Chapter:   req.Chapter,
		K:         req.K,
	})
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = open the bundle directly)")
	class, subject, language, chapter, k := queryFlags(fs)
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Println("Usage: gurukul ask [flags] <question>")
		os.Exit(1)
	}
	req := buildQueryRequest(question, *class, *subject, *language, *chapter, *k)

	var ans *models.Answer
	if *serverURL != "" {
		res, err := postJSON[models.Answer](*serverURL, "/api/v1/ask", req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		ans = res
	} else {
		res, err := askDirect(*configPath, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		ans = res
	}

	switch *outputFormat {
	case "json":
		writeJSONOut(ans)
	case "text":
		fmt.Println(ans.Answer)
		if len(ans.Sources) > 0 {
			fmt.Printf("\nsources: %s\n", strings.Join(ans.Sources, ", "))
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// askDirect composes an answer against the configured bundle without a
// running server.
func askDirect(configPath string, req *queryRequest) (*models.Answer, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	b, err := bundle.Open(cfg.Bundle.Path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	rt, err := buildRuntime(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	ctx := context.Background()
	vec, err := rt.Embedder.Embed(ctx, req.Question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	result, err := rt.Engine.Search(ctx, b, &models.Query{
		Embedding: vec,
		Class:     req.Class,
		Subject:   req.Subject,
		Language:  req.Language,
		Chapter:   req.Chapter,
		K:         req.K,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return rt.Composer.Answer(ctx, req.Question, result)
}

func runInspect() {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	bundleDir := fs.String("bundle", "", "bundle directory (default: bundle path from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	dir := *bundleDir
	if dir == "" {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}
		dir = cfg.Bundle.Path
	}

	b, err := bundle.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open bundle: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		writeJSONOut(map[string]any{
			"dir":      dir,
			"version":  b.Version,
			"chunks":   b.Count(),
			"manifest": b.Manifest,
			"model":    b.Model,
		})
	case "text":
		fmt.Printf("bundle:           %s\n", dir)
		fmt.Printf("version:          %s\n", b.Version)
		fmt.Printf("chunks:           %d\n", b.Count())
		fmt.Printf("class:            %d\n", b.Manifest.Class)
		fmt.Printf("subject:          %s\n", b.Manifest.Subject)
		if b.Manifest.Chapter > 0 {
			fmt.Printf("chapter:          %d\n", b.Manifest.Chapter)
		}
		fmt.Printf("language:         %s\n", b.Manifest.Language)
		fmt.Printf("embedding_model:  %s\n", b.Manifest.EmbeddingModel)
		fmt.Printf("embedding_dim:    %d\n", b.Manifest.EmbeddingDim)
		fmt.Printf("chunk_strategy:   %s\n", b.Manifest.ChunkStrategy)
		fmt.Printf("hash_strategy:    %s\n", b.Manifest.HashStrategy)
		fmt.Printf("created_at:       %s\n", b.Manifest.CreatedAt)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func writeJSONOut(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// firstLine returns the first line of text, shortened for terminal display.
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	const max = 120
	if len(text) > max {
		return text[:max] + "…"
	}
	return text
}
