package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/duckdb"
	"github.com/monarch-initiative/svanna-go/internal/genome"
)

type ingestOptions struct {
	gtf       string
	enhancers string
	tads      string
	force     bool
}

func newIngestCmd() *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load genes, enhancers and TAD boundaries into the feature store",
		Long: `Load a GENCODE GTF, an enhancer TSV and a TAD boundary TSV into the DuckDB
feature store. Sources whose size and modification time did not change since
the last ingest are skipped.

Enhancer TSV columns: chrom start end id developmental tissues
TAD boundary TSV columns: chrom start end id stability`,
		Example: `  svanna ingest --enhancers enhancers.tsv --tads tads.tsv
  svanna ingest --gtf gencode.v46.basic.annotation.gtf.gz --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.gtf, "gtf", "", "GENCODE GTF file (default: the downloaded GTF of the assembly)")
	cmd.Flags().StringVar(&opts.enhancers, "enhancers", "", "Enhancer TSV file")
	cmd.Flags().StringVar(&opts.tads, "tads", "", "TAD boundary TSV file")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Reload sources even when unchanged")
	return cmd
}

// ingestSource is one input file. parse runs concurrently with the other
// sources; write runs afterwards against the store.
type ingestSource struct {
	kind  string
	path  string
	fp    duckdb.FileFingerprint
	parse func() (int, error)
	write func(*duckdb.Store) error
}

func runIngest(cmd *cobra.Command, opts ingestOptions) error {
	assemblyName := viper.GetString(keyAssembly)
	assembly, err := genome.AssemblyByName(assemblyName)
	if err != nil {
		return err
	}

	if opts.gtf == "" {
		if p, ok := findGENCODEFile(assemblyName); ok {
			opts.gtf = p
		}
	}
	if opts.gtf == "" && opts.enhancers == "" && opts.tads == "" {
		return fmt.Errorf("nothing to ingest: pass --gtf, --enhancers or --tads, or run 'svanna download --assembly %s'", assemblyName)
	}

	path, err := dbPath()
	if err != nil {
		return err
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		genes      []*cache.Gene
		enhancers  []*cache.Enhancer
		boundaries []*cache.TadBoundary
	)
	candidates := []ingestSource{
		{
			kind: duckdb.SourceGenes,
			path: opts.gtf,
			parse: func() (int, error) {
				loader := cache.NewGTFLoader(opts.gtf, assembly)
				loader.SetLogger(logger)
				var err error
				genes, err = loader.Load()
				return len(genes), err
			},
			write: func(s *duckdb.Store) error { return s.WriteGenes(genes) },
		},
		{
			kind: duckdb.SourceEnhancers,
			path: opts.enhancers,
			parse: func() (int, error) {
				var err error
				enhancers, err = cache.LoadEnhancers(opts.enhancers, assembly)
				return len(enhancers), err
			},
			write: func(s *duckdb.Store) error { return s.WriteEnhancers(enhancers) },
		},
		{
			kind: duckdb.SourceTadBoundaries,
			path: opts.tads,
			parse: func() (int, error) {
				var err error
				boundaries, err = cache.LoadTadBoundaries(opts.tads, assembly)
				return len(boundaries), err
			},
			write: func(s *duckdb.Store) error { return s.WriteTadBoundaries(boundaries) },
		},
	}

	var sources []ingestSource
	for _, src := range candidates {
		if src.path == "" {
			continue
		}
		src.fp, err = duckdb.StatFile(src.path)
		if err != nil {
			return fmt.Errorf("stat %s source: %w", src.kind, err)
		}
		if !opts.force {
			unchanged, err := store.SourceUnchanged(src.kind, src.fp)
			if err != nil {
				return err
			}
			if unchanged {
				logger.Info("source unchanged, skipping", zap.String("kind", src.kind), zap.String("path", src.path))
				continue
			}
		}
		sources = append(sources, src)
	}

	g := new(errgroup.Group)
	for _, src := range sources {
		g.Go(func() error {
			n, err := src.parse()
			if err != nil {
				return fmt.Errorf("load %s: %w", src.kind, err)
			}
			logger.Info("parsed source", zap.String("kind", src.kind), zap.String("path", src.path), zap.Int("records", n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, src := range sources {
		if err := src.write(store); err != nil {
			return err
		}
		if err := store.RecordSource(src.kind, src.fp); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d of %d sources into %s\n", len(sources), countSet(opts), store.Path())
	return nil
}

func countSet(opts ingestOptions) int {
	n := 0
	for _, p := range []string{opts.gtf, opts.enhancers, opts.tads} {
		if p != "" {
			n++
		}
	}
	return n
}
