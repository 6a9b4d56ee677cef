package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"smartassist/internal/analysis"
	"smartassist/internal/config"
	"smartassist/internal/crawler"
	"smartassist/internal/extractor"
	"smartassist/internal/git"
	"smartassist/internal/graph"
	"smartassist/internal/index"
	"smartassist/internal/project"
	"smartassist/internal/resolver"
	"smartassist/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:           "smartassist",
		Short:         "Expected-type driven Java completion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	dbPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "smartassist.yaml", "Path to the config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the type index database (SQLite), overrides the config")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(expectCmd)
	rootCmd.AddCommand(completeCmd)
}

type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store *storage.SQLiteStore
}

// setup loads the config, builds the logger and opens the store.
func setup() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	log, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &app{cfg: cfg, log: log, store: store}, nil
}

func (a *app) Close() error { return a.store.Close() }

func (a *app) indexer(chain *resolver.ResolverChain) (*index.Indexer, error) {
	ext, err := extractor.NewExtractor("java")
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	cr := crawler.NewCrawler(ext, crawler.WithWorkers(a.cfg.Project.Workers), crawler.WithLogger(a.log))
	return index.NewIndexer(cr, a.log, project.WithLogger(a.log), project.WithChain(chain)), nil
}

// loadProject opens the stored index. An empty index falls back to the JDK
// stubs alone.
func (a *app) loadProject(ctx context.Context) (*project.Project, error) {
	g, err := a.store.LoadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	if len(g.Nodes) == 0 {
		a.log.WithField("db", a.cfg.Storage.Path).Warn("type index is empty, run `smartassist index` first; using JDK types only")
		return project.Build(ctx, nil, project.WithLogger(a.log))
	}
	return project.New(g, project.WithLogger(a.log)), nil
}

var indexCmd = &cobra.Command{
	Use:   "index [roots...]",
	Short: "Scan Java source roots and store the resolved type index",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.Close()

		roots := args
		if len(roots) == 0 {
			roots = a.cfg.Project.Roots
		}
		fmt.Printf("📂 Scanning: %v\n", roots)

		chain := resolver.NewDefaultChain()
		idx, err := a.indexer(chain)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		start := time.Now()
		p, err := idx.BuildProject(ctx, roots...)
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		g := p.Graph()
		fmt.Printf("✅ Index built in %v. Found %d types.\n", time.Since(start).Round(time.Millisecond), len(g.Nodes))
		printStats(g, chain)

		if err := a.store.SaveGraph(ctx, g); err != nil {
			return fmt.Errorf("failed to save graph: %w", err)
		}
		fmt.Printf("💾 Saved to %s\n", a.cfg.Storage.Path)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [base-ref]",
	Short: "Re-index the Java files changed since a git ref (default HEAD)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseRef := "HEAD"
		if len(args) > 0 {
			baseRef = args[0]
		}

		a, err := setup()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		changes, err := git.GetChangedFiles(ctx, ".", baseRef)
		if err != nil {
			return fmt.Errorf("failed to get git changes: %w", err)
		}
		if len(changes) == 0 {
			fmt.Println("✅ No changes detected.")
			return nil
		}

		chain := resolver.NewDefaultChain()
		idx, err := a.indexer(chain)
		if err != nil {
			return err
		}
		base, err := a.loadProject(ctx)
		if err != nil {
			return err
		}

		res, err := idx.Update(ctx, base, changes)
		if err != nil {
			return err
		}
		if len(res.UpdatedFiles)+len(res.DeletedFiles) == 0 {
			fmt.Println("✅ No Java changes detected.")
			return nil
		}
		fmt.Printf("📝 Updated %d files (%d types), removed %d files.\n", len(res.UpdatedFiles), res.Types, len(res.DeletedFiles))

		if err := a.store.SaveGraph(ctx, res.Project.Graph()); err != nil {
			return fmt.Errorf("failed to save updated graph: %w", err)
		}
		printStats(res.Project.Graph(), chain)

		report := analysis.NewAnalyzer(res.Project.Graph()).AnalyzeImpact(changes)
		fmt.Printf("🔍 Impact: %d types changed, %d subtypes affected.\n", len(report.DirectlyAffected), len(report.IndirectlyAffected))
		for _, sym := range report.DirectlyAffected {
			a.log.WithField("type", sym.QualifiedName).Debug("changed type")
		}
		return nil
	},
}

var typesCmd = &cobra.Command{
	Use:   "types <file.java | qualified-name>",
	Short: "List the indexed types of a file, or show one type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if !strings.HasSuffix(args[0], ".java") {
			t, err := a.store.GetType(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s %s (%s:%d)\n", t.Kind, t.Signature(), t.Filepath, t.StartLine)
			for _, r := range t.Supertypes {
				fmt.Printf("  %-10s %s\n", r.Kind, r.Target)
			}
			for _, m := range t.Methods {
				fmt.Printf("  %-10s %s%v %s\n", m.Modifiers.Visibility(), m.Name, m.ParameterTypes(), m.ReturnType)
			}
			return nil
		}

		types, err := a.store.FindTypesByFile(ctx, args[0])
		if err != nil {
			return err
		}
		if len(types) == 0 {
			fmt.Printf("No indexed types in %s\n", args[0])
			return nil
		}
		for _, t := range types {
			fmt.Printf("%-10s %-40s lines %d-%d\n", t.Kind, t.QualifiedName, t.StartLine, t.EndLine)
		}
		return nil
	},
}

func printStats(g *graph.Graph, chain *resolver.ResolverChain) {
	kinds := g.KindCounts()
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, string(k))
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("  -> %-10s %d\n", k, kinds[graph.TypeKind(k)])
	}
	fmt.Printf("  -> Linked edges: %d, unresolved relations: %d\n", len(g.Edges), len(g.Unresolved))
	for reason, n := range g.UnresolvedReasonCounts() {
		fmt.Printf("     %s: %d\n", reason, n)
	}
	for _, r := range chain.Results() {
		if r.Stats.Attempted == 0 {
			continue
		}
		fmt.Printf("  -> resolver %-10s resolved %d/%d\n", r.Resolver, r.Stats.Resolved, r.Stats.Attempted)
	}
}
