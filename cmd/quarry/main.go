package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/quarry"
	"github.com/jward/quarry/internal/config"
	"github.com/jward/quarry/internal/lang"
	"github.com/jward/quarry/internal/store"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "quarry",
	Short:         "Extract a cross-referenced entity graph from source code",
	Long:          "Quarry parses source files with tree-sitter, extracts documentable entities, and resolves type references across files into a single graph.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run — prints help by default.
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(languagesCmd)
}

var (
	flagLanguages  string
	flagRepository string
	flagSerial     bool
	flagOut        string
	flagDB         string
	flagFormat     string
)

var extractCmd = &cobra.Command{
	Use:   "extract [path]",
	Short: "Extract and resolve an entity graph for a directory",
	Long:  "Parses every supported source file under the given directory, resolves references across files, and writes the finished graph as JSON and optionally to a SQLite database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. ts,py)")
	extractCmd.Flags().StringVar(&flagRepository, "repository", "", "repository URL stamped into entity sources")
	extractCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable parallel extraction")
	extractCmd.Flags().StringVar(&flagOut, "out", "", "write JSON graph to a file instead of stdout")
	extractCmd.Flags().StringVar(&flagDB, "db", "", "also persist the graph to a SQLite database at this path")
	extractCmd.Flags().StringVar(&flagFormat, "format", "", "output format: json|none")
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their file extensions",
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range lang.Languages() {
			fmt.Printf("%s\t%s\n", l, strings.Join(lang.Extensions(l), " "))
		}
	},
}

func runExtract(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(targetDir)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	paths, err := selectFiles(targetDir, cfg)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported source files under %s", targetDir)
	}

	opts := []quarry.Option{
		quarry.WithParallel(cfg.Extraction.Parallel),
		quarry.WithMaxChainDepth(cfg.Extraction.MaxChainDepth),
	}
	if len(cfg.Extraction.Languages) > 0 {
		opts = append(opts, quarry.WithLanguages(cfg.Extraction.Languages...))
	}
	if cfg.Extraction.Repository != "" {
		opts = append(opts, quarry.WithRepository(cfg.Extraction.Repository))
	}
	engine := quarry.New(targetDir, opts...)

	ctx := context.Background()

	extractStart := time.Now()
	if err := engine.ExtractFiles(ctx, paths); err != nil {
		return fmt.Errorf("extracting: %w", err)
	}
	extractDuration := time.Since(extractStart)

	resolveStart := time.Now()
	if err := engine.Resolve(ctx); err != nil {
		return fmt.Errorf("resolving: %w", err)
	}
	resolveDuration := time.Since(resolveStart)

	graph, err := engine.Graph()
	if err != nil {
		return err
	}

	if cfg.Output.Format == "json" {
		if err := writeJSON(graph, cfg.Output.Path); err != nil {
			return err
		}
	}
	if cfg.Output.DB != "" {
		if err := writeDB(graph, cfg.Output.DB); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "Extracted %d file(s), %d entities in %s (extract: %s, resolve: %s)\n",
		len(paths),
		graph.EntityCount(),
		time.Since(start).Round(time.Millisecond),
		extractDuration.Round(time.Millisecond),
		resolveDuration.Round(time.Millisecond),
	)
	for _, d := range graph.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s\n", d.String())
	}

	return nil
}

// applyFlags overrides loaded configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("languages") {
		var langs []string
		for _, l := range strings.Split(flagLanguages, ",") {
			if l = strings.TrimSpace(l); l != "" {
				langs = append(langs, l)
			}
		}
		cfg.Extraction.Languages = langs
	}
	if cmd.Flags().Changed("repository") {
		cfg.Extraction.Repository = flagRepository
	}
	if flagSerial {
		cfg.Extraction.Parallel = false
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Path = flagOut
	}
	if cmd.Flags().Changed("db") {
		cfg.Output.DB = flagDB
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = flagFormat
	}
}

// selectFiles walks targetDir and returns the files matching the
// configured include/ignore patterns.
func selectFiles(targetDir string, cfg *config.Config) ([]string, error) {
	matcher, err := config.NewMatcher(cfg)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(targetDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != targetDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(targetDir, path)
		if err != nil {
			return err
		}
		if matcher.Match(filepath.ToSlash(rel)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", targetDir, err)
	}
	return paths, nil
}

// writeJSON emits the graph as indented JSON to path, or stdout when
// path is empty.
func writeJSON(graph *quarry.Graph, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(graph); err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	return nil
}

// writeDB persists the graph to a SQLite database.
func writeDB(graph *quarry.Graph, dbPath string) error {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	s, err := store.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return err
	}
	if err := s.WriteGraph(graph.Entities, graph.Diagnostics); err != nil {
		return fmt.Errorf("writing graph: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	return nil
}

// resolveTargetDir returns the absolute path of the directory to extract.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
