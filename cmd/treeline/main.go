// ABOUTME: CLI entrypoint for the treeline family-tree renderer with file, vault, store, and server modes.
// ABOUTME: Wires together record loading, traversal, layout, and diagram output behind flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/treeline-tools/treeline/canvas"
	"github.com/treeline-tools/treeline/diagram"
	"github.com/treeline-tools/treeline/family"
	"github.com/treeline-tools/treeline/gedcom"
	"github.com/treeline-tools/treeline/layout"
	"github.com/treeline-tools/treeline/render"
	"github.com/treeline-tools/treeline/store"
	"github.com/treeline-tools/treeline/traverse"
	"github.com/treeline-tools/treeline/vault"
	"github.com/treeline-tools/treeline/web"
)

var version = "dev"

// config holds all CLI configuration parsed from flags and positional arguments.
type config struct {
	rootID      string
	policy      string
	generations int
	noSpouses   bool
	orientation string
	output      string
	format      string
	dbPath      string
	serverMode  bool
	port        int
	verbose     bool
	showVersion bool
	inputPath   string
}

func main() {
	loadDotEnv(".env")

	cfg := parseFlags()

	if cfg.showVersion {
		fmt.Printf("treeline %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

// parseFlags parses command-line flags and returns a populated config.
func parseFlags() config {
	var cfg config

	fs := flag.NewFlagSet("treeline", flag.ContinueOnError)
	fs.StringVar(&cfg.rootID, "root", "", "Root person id to render from")
	fs.StringVar(&cfg.policy, "policy", "full", "Traversal policy: ancestors, descendants, full")
	fs.IntVar(&cfg.generations, "generations", 0, "Generation limit (0 = unlimited)")
	fs.BoolVar(&cfg.noSpouses, "no-spouses", false, "Exclude spouses from the rendered tree")
	fs.StringVar(&cfg.orientation, "orientation", "vertical", "Layout orientation: vertical, horizontal")
	fs.StringVar(&cfg.output, "o", "", "Output file (default: stdout)")
	fs.StringVar(&cfg.format, "format", "canvas", "Output format: canvas, json, dot, svg, png")
	fs.StringVar(&cfg.dbPath, "db", "", "SQLite database for persisted records")
	fs.BoolVar(&cfg.serverMode, "server", false, "Start HTTP viewer server mode")
	fs.IntVar(&cfg.port, "port", 7353, "Server port (default: 7353)")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(os.Stderr, version)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if fs.NArg() > 0 {
		cfg.inputPath = fs.Arg(0)
	}

	return cfg
}

// run dispatches to the appropriate mode based on the config.
// Returns an exit code: 0 for success, 1 for failure.
func run(cfg config) int {
	if cfg.inputPath == "" && cfg.dbPath == "" {
		printHelp(os.Stderr, version)
		return 0
	}

	records, err := loadRecords(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "error: no person records loaded")
		return 1
	}
	if cfg.verbose {
		log.Printf("records loaded count=%d source=%s", len(records), recordSource(cfg))
	}

	// Persist the freshly loaded collection when both an input and a
	// database are given.
	if cfg.dbPath != "" && cfg.inputPath != "" {
		batchID, err := persistRecords(cfg.dbPath, records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		if cfg.verbose {
			log.Printf("records persisted db=%s batch=%s", cfg.dbPath, batchID)
		}
	}

	if cfg.serverMode {
		return runServer(cfg, records)
	}

	return renderTree(cfg, records)
}

// recordSource names where records came from for logging.
func recordSource(cfg config) string {
	if cfg.inputPath != "" {
		return cfg.inputPath
	}
	return cfg.dbPath
}

// loadRecords reads person records from the configured input: a GEDCOM
// file, a notes directory, or a previously persisted database.
func loadRecords(cfg config) ([]family.PersonRecord, error) {
	if cfg.inputPath == "" {
		s, err := store.Open(cfg.dbPath)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.LoadAll()
	}

	info, err := os.Stat(cfg.inputPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return vault.Load(cfg.inputPath)
	}
	if strings.HasSuffix(strings.ToLower(cfg.inputPath), ".ged") {
		return gedcom.ParseFile(cfg.inputPath)
	}
	return nil, fmt.Errorf("unsupported input %q: expected a .ged file or a notes directory", cfg.inputPath)
}

// persistRecords saves the collection to the database and returns the batch id.
func persistRecords(dbPath string, records []family.PersonRecord) (string, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer s.Close()
	return s.SaveAll(records)
}

// renderTree runs the traversal/layout/diagram pipeline and writes the
// requested output format.
func renderTree(cfg config, records []family.PersonRecord) int {
	if cfg.rootID == "" {
		fmt.Fprintln(os.Stderr, "error: -root is required to render a tree")
		return 1
	}

	policy, err := traverse.ParsePolicy(cfg.policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	lopts := layout.DefaultOptions()
	switch cfg.orientation {
	case "", "vertical":
	case "horizontal":
		lopts.Orientation = layout.Horizontal
	default:
		fmt.Fprintf(os.Stderr, "error: invalid orientation %q\n", cfg.orientation)
		return 1
	}

	g := family.Build(records)
	res, err := traverse.Traverse(g, cfg.rootID, policy, traverse.Options{
		MaxGenerations: cfg.generations,
		IncludeSpouses: !cfg.noSpouses,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	positions := layout.Layout(res, policy, lopts)
	d := diagram.Render(g, positions, res.Edges, diagram.Options{
		NodeWidth:   lopts.NodeWidth,
		NodeHeight:  lopts.NodeHeight,
		Spacing:     lopts.Spacing,
		Orientation: lopts.Orientation,
	})

	data, err := encodeDiagram(cfg, d, g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if err := writeOutput(cfg.output, data); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if cfg.verbose {
		printSummary(os.Stderr, summaryStats{
			Root:    cfg.rootID,
			Policy:  string(policy),
			Persons: g.Len(),
			Nodes:   len(d.Nodes),
			Edges:   len(d.Edges),
			Format:  cfg.format,
		})
	}

	return 0
}

// encodeDiagram serializes the diagram into the requested output format.
func encodeDiagram(cfg config, d *diagram.Diagram, g *family.Graph) ([]byte, error) {
	switch cfg.format {
	case "canvas":
		return canvas.Marshal(canvas.FromDiagram(d, g))
	case "json":
		return diagramJSON(d)
	case "dot":
		return []byte(render.ToDOT(d)), nil
	case "svg", "png":
		if !render.GraphvizAvailable() {
			return nil, fmt.Errorf("format %q requires graphviz (dot) on PATH", cfg.format)
		}
		return render.Render(context.Background(), d, cfg.format)
	}
	return nil, fmt.Errorf("unknown format %q: expected canvas, json, dot, svg, or png", cfg.format)
}

// diagramJSON serializes the raw diagram document with indentation.
func diagramJSON(d *diagram.Diagram) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encode diagram: %w", err)
	}
	return append(data, '\n'), nil
}

// writeOutput writes data to the output file, or stdout when none is set.
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// runServer starts the HTTP viewer server over the loaded records.
func runServer(cfg config, records []family.PersonRecord) int {
	srv, err := web.NewServer(web.ServerConfig{
		Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.port),
		Records: records,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// Shut down cleanly on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	httpServer := &http.Server{
		Addr:              srv.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(os.Stderr, "listening on %s\n", srv.Addr())
	if err := serveUntilDone(ctx, httpServer); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	return 0
}

// serveUntilDone blocks in ListenAndServe and closes the server when
// ctx is cancelled. A close-triggered exit is a clean one.
func serveUntilDone(ctx context.Context, httpServer *http.Server) error {
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
