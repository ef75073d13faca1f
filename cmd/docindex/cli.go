package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex"
	"github.com/kailas-cloud/docindex/internal/config"
	logpkg "github.com/kailas-cloud/docindex/internal/logger"
	"github.com/kailas-cloud/docindex/internal/version"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var (
	errUsage  = errors.New("usage error")
	errOutput = errors.New("write output")
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, c *docindex.Client, args []string, out io.Writer) (int, error)
}

var commands = []command{
	{"list", "list [-limit n] [-offset n]", runList},
	{"get", "get <id>", runGet},
	{"delete", "delete <id>", runDelete},
	{"create", "create (-url u | -description d) [-metadata json] | create -file path", runCreate},
	{"search", "search (-url u | -description d) [-top-k n] [-threshold f]", runSearch},
	{"recommend", "recommend [-top-k n] [-threshold f] <id>", runRecommend},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	env := config.GetEnv()

	fs := flag.NewFlagSet("docindex", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", config.DefaultPath(env), "path to YAML config file")
	level := fs.String("log-level", "", "log level override: debug, info, warn, error")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return exitUsage
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	if name == "version" {
		_, _ = fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n", name)
		printUsage(stderr)
		return exitUsage
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if *level != "" {
		cfg.Logging.Level = *level
	}
	if err := cfg.ValidateClient(); err != nil {
		_, _ = fmt.Fprintln(stderr, "invalid config:", err)
		return exitFailure
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return exitFailure
	}
	defer func() { _ = logger.Sync() }()

	client, err := docindex.New(
		docindex.Config{APIKey: cfg.Client.APIKey, BaseURL: cfg.Client.BaseURL},
		docindex.WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout()}),
		docindex.WithLogger(logger),
	)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return exitFailure
	}

	ctx = logpkg.ContextWithLogger(ctx, logger.With(zap.String("command", name)))
	code, err := cmd.run(ctx, client, rest, stdout)
	if errors.Is(err, errOutput) {
		_, _ = fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stderr, err)
		}
		_, _ = fmt.Fprintln(stderr, "usage: docindex", cmd.usage)
		return exitUsage
	}
	return code
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: docindex [-config path] [-log-level level] <command> [flags] [args]")
	_, _ = fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		_, _ = fmt.Fprintln(w, "  "+c.usage)
	}
	_, _ = fmt.Fprintln(w, "  version")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runList(ctx context.Context, c *docindex.Client, args []string, out io.Writer) (int, error) {
	fs := newFlagSet("list")
	var limit, offset optInt
	fs.Var(&limit, "limit", "page size")
	fs.Var(&offset, "offset", "number of documents to skip")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if fs.NArg() != 0 {
		return 0, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	var params *docindex.ListDocumentsParams
	if limit.v != nil || offset.v != nil {
		params = &docindex.ListDocumentsParams{Limit: limit.v, Offset: offset.v}
	}
	return emit(ctx, out, c.ListDocuments(ctx, params))
}

func runGet(ctx context.Context, c *docindex.Client, args []string, out io.Writer) (int, error) {
	id, err := singleID(args)
	if err != nil {
		return 0, err
	}
	return emit(ctx, out, c.GetDocumentByID(ctx, id))
}

func runDelete(ctx context.Context, c *docindex.Client, args []string, out io.Writer) (int, error) {
	id, err := singleID(args)
	if err != nil {
		return 0, err
	}
	return emit(ctx, out, c.DeleteDocumentByID(ctx, id))
}

func runCreate(ctx context.Context, c *docindex.Client, args []string, out io.Writer) (int, error) {
	fs := newFlagSet("create")
	var url, description optString
	fs.Var(&url, "url", "document URL")
	fs.Var(&description, "description", "document text")
	metadata := fs.String("metadata", "", "metadata as a JSON object")
	file := fs.String("file", "", "JSON file holding an array of documents")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if fs.NArg() != 0 {
		return 0, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	var docs []docindex.CreateDocumentInput
	switch {
	case *file != "":
		if url.v != nil || description.v != nil || *metadata != "" {
			return 0, fmt.Errorf("%w: -file cannot be combined with other flags", errUsage)
		}
		data, err := os.ReadFile(filepath.Clean(*file))
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", *file, err)
		}
		if err := json.Unmarshal(data, &docs); err != nil {
			return 0, fmt.Errorf("parse %s: %w", *file, err)
		}
	case url.v != nil || description.v != nil:
		in := docindex.CreateDocumentInput{URL: url.v, Description: description.v}
		if *metadata != "" {
			if err := json.Unmarshal([]byte(*metadata), &in.Metadata); err != nil {
				return 0, fmt.Errorf("%w: -metadata: %v", errUsage, err)
			}
		}
		docs = append(docs, in)
	default:
		return 0, fmt.Errorf("%w: one of -url, -description or -file is required", errUsage)
	}
	return emit(ctx, out, c.CreateDocuments(ctx, docs))
}

func runSearch(ctx context.Context, c *docindex.Client, args []string, out io.Writer) (int, error) {
	fs := newFlagSet("search")
	var (
		url, description optString
		topK             optInt
		threshold        optFloat
	)
	fs.Var(&url, "url", "query URL")
	fs.Var(&description, "description", "query text")
	fs.Var(&topK, "top-k", "maximum number of hits")
	fs.Var(&threshold, "threshold", "minimum similarity score")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if fs.NArg() != 0 {
		return 0, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	return emit(ctx, out, c.SearchDocuments(ctx, docindex.SearchParams{
		URL:         url.v,
		Description: description.v,
		TopK:        topK.v,
		Threshold:   threshold.v,
	}))
}

func runRecommend(ctx context.Context, c *docindex.Client, args []string, out io.Writer) (int, error) {
	fs := newFlagSet("recommend")
	var (
		topK      optInt
		threshold optFloat
	)
	fs.Var(&topK, "top-k", "maximum number of recommendations")
	fs.Var(&threshold, "threshold", "minimum similarity score")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	id, err := singleID(fs.Args())
	if err != nil {
		return 0, err
	}

	var params *docindex.RecommendationParams
	if topK.v != nil || threshold.v != nil {
		params = &docindex.RecommendationParams{TopK: topK.v, Threshold: threshold.v}
	}
	return emit(ctx, out, c.GetRecommendations(ctx, id, params))
}

func singleID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected exactly one document id", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid document id %q", errUsage, args[0])
	}
	return id, nil
}

// emit prints resp as indented JSON and maps it to an exit status.
func emit[T any](ctx context.Context, out io.Writer, resp docindex.Response[T]) (int, error) {
	logpkg.FromContext(ctx).Debug("command completed",
		zap.Bool("ok", resp.OK),
		zap.Int("status", resp.Status),
	)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return exitFailure, fmt.Errorf("%w: %w", errOutput, err)
	}
	if !resp.OK {
		return exitFailure, nil
	}
	return exitOK, nil
}
