package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/monarch-initiative/svanna-go/internal/cache"
	"github.com/monarch-initiative/svanna-go/internal/datasource/relevance"
	"github.com/monarch-initiative/svanna-go/internal/dispatch"
	"github.com/monarch-initiative/svanna-go/internal/duckdb"
	"github.com/monarch-initiative/svanna-go/internal/evaluate"
	"github.com/monarch-initiative/svanna-go/internal/genome"
	"github.com/monarch-initiative/svanna-go/internal/impact"
	"github.com/monarch-initiative/svanna-go/internal/output"
	"github.com/monarch-initiative/svanna-go/internal/prioritize"
	"github.com/monarch-initiative/svanna-go/internal/vcf"
)

type prioritizeOptions struct {
	output      string
	format      string
	geneWeights string
	tissues     string
	store       bool
}

func newPrioritizeCmd() *cobra.Command {
	var opts prioritizeOptions

	cmd := &cobra.Command{
		Use:   "prioritize [flags] <input.vcf>",
		Short: "Prioritize structural variants in a VCF file",
		Long: `Prioritize structural variants by comparing the genes and enhancers of the
reference with their arrangement on the alternate allele.

Gene weights are read from a TSV with gene_id and relevance columns. Tissue
terms list the enhancer tissues relevant to the phenotype, one per line.`,
		Example: `  svanna prioritize calls.vcf
  svanna prioritize --gene-weights weights.tsv --tissues tissues.txt -o out.tsv calls.vcf.gz
  svanna prioritize --granular --store calls.vcf
  cat calls.vcf | svanna prioritize -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrioritize(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	flags.StringVarP(&opts.format, "output-format", "f", "tab", "Output format: tab, vcf")
	flags.StringVar(&opts.geneWeights, "gene-weights", "", "Gene relevance TSV (default: all genes weigh 0)")
	flags.StringVar(&opts.tissues, "tissues", "", "Relevant enhancer tissue terms (default: none)")
	flags.BoolVar(&opts.store, "store", false, "Persist priorities in the feature store under a new run id")
	flags.Bool("granular", false, "Report per-gene scores")
	flags.Bool("force-tad-evaluation", false, "Always delimit the window by TAD boundaries")
	flags.Float64("tad-stability-threshold", 80, "Minimum stability of delimiting TAD boundaries")
	flags.Int("promoter-length", 500, "Promoter length upstream of transcript starts")
	flags.Float64("promoter-fitness-gain", 0, "Fitness gain of promoter variants, in [0, 1]")
	flags.Float64("gene-factor", 1, "Gene impact with no disruption")
	flags.Float64("enhancer-factor", 1, "Enhancer impact with no disruption")
	flags.Int("threads", 0, "Worker threads (default: number of CPUs)")
	bindFlags(flags, map[string]string{
		keyGranular:            "granular",
		keyForceTadEvaluation:  "force-tad-evaluation",
		keyStabilityThreshold:  "tad-stability-threshold",
		keyPromoterLength:      "promoter-length",
		keyPromoterFitnessGain: "promoter-fitness-gain",
		keyGeneFactor:          "gene-factor",
		keyEnhancerFactor:      "enhancer-factor",
		keyThreads:             "threads",
	})
	return cmd
}

func runPrioritize(cmd *cobra.Command, inputPath string, opts prioritizeOptions) error {
	assembly, err := genome.AssemblyByName(viper.GetString(keyAssembly))
	if err != nil {
		return err
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

	landscape, err := store.LoadCache(assembly)
	if err != nil {
		return err
	}
	if landscape.GeneCount() == 0 {
		return fmt.Errorf("feature store %s holds no genes; run 'svanna ingest' first", store.Path())
	}
	landscape.SetStabilityThreshold(viper.GetFloat64(keyStabilityThreshold))
	logger.Info("loaded landscape",
		zap.Int("genes", landscape.GeneCount()),
		zap.Int("enhancers", landscape.EnhancerCount()),
		zap.Int("tad_boundaries", landscape.TadBoundaryCount()))

	p, err := newPrioritizer(landscape, opts)
	if err != nil {
		return err
	}

	parser, err := vcf.NewParser(inputPath)
	if err != nil {
		return err
	}
	defer parser.Close()

	var out io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	writer, err := newPriorityWriter(opts.format, out, parser.Header())
	if err != nil {
		return err
	}
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	converter := vcf.NewConverter(assembly)
	converter.SetLogger(logger)

	var records []duckdb.PriorityRecord
	err = prioritizeRecords(cmd.Context(), parser, converter, p, viper.GetInt(keyThreads), func(r prioritize.WorkResult) error {
		if opts.store {
			records = append(records, priorityRecord(r))
		}
		return writer.Write(r)
	})
	if err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	if opts.store {
		runID := duckdb.NewRunID()
		if err := store.WritePriorities(runID, records); err != nil {
			return err
		}
		logger.Info("stored priorities", zap.String("run_id", runID.String()), zap.Int("variants", len(records)))
		fmt.Fprintf(cmd.ErrOrStderr(), "Run %s: stored %d priorities\n", runID, len(records))
	}
	return nil
}

// priorityWriter adapts the output formatters to pool results.
type priorityWriter interface {
	WriteHeader() error
	Write(r prioritize.WorkResult) error
	Flush() error
}

type tabResultWriter struct{ *output.TabWriter }

func (w tabResultWriter) Write(r prioritize.WorkResult) error {
	return w.TabWriter.Write(r.Variant, r.Priority)
}

type vcfResultWriter struct{ *output.VCFWriter }

func (w vcfResultWriter) Write(r prioritize.WorkResult) error {
	return w.VCFWriter.Write(r.Extra.(*vcf.Record), r.Priority)
}

func newPriorityWriter(format string, out io.Writer, header []string) (priorityWriter, error) {
	switch format {
	case "tab":
		return tabResultWriter{output.NewTabWriter(out)}, nil
	case "vcf":
		return vcfResultWriter{output.NewVCFWriter(out, header)}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// newPrioritizer wires the dispatcher, data service, calculators and
// relevance tables into the configured prioritizer.
func newPrioritizer(landscape *cache.Cache, opts prioritizeOptions) (prioritize.Prioritizer, error) {
	dispatcher := dispatch.NewTadAwareDispatcher(landscape, landscape, dispatch.Options{
		ForceTadEvaluation: viper.GetBool(keyForceTadEvaluation),
	})
	dispatcher.SetLogger(logger)

	genes := impact.NewGeneCalculator(impact.GeneOptions{
		Factor:              viper.GetFloat64(keyGeneFactor),
		PromoterLength:      viper.GetInt(keyPromoterLength),
		PromoterFitnessGain: viper.GetFloat64(keyPromoterFitnessGain),
	})
	genes.SetLogger(logger)
	enhancers := impact.NewEnhancerCalculator(viper.GetFloat64(keyEnhancerFactor))
	enhancers.SetLogger(logger)

	weights := relevance.NewGeneWeights(nil)
	if opts.geneWeights != "" {
		var err error
		if weights, err = relevance.LoadGeneWeights(opts.geneWeights); err != nil {
			return nil, err
		}
		logger.Info("loaded gene weights", zap.Int("genes", weights.Len()))
	}
	tissues := relevance.TissueTerms{}
	if opts.tissues != "" {
		var err error
		if tissues, err = relevance.LoadTissueTerms(opts.tissues); err != nil {
			return nil, err
		}
		logger.Info("loaded tissue terms", zap.Int("terms", len(tissues)))
	}

	evaluator := evaluate.NewEvaluator(genes, enhancers, weights, tissues)
	evaluator.SetLogger(logger)
	data := evaluate.NewFeatureDataService(landscape)

	if viper.GetBool(keyGranular) {
		p := prioritize.NewGranularPrioritizer(dispatcher, data, evaluator)
		p.SetLogger(logger)
		return p, nil
	}
	p := prioritize.NewAdditivePrioritizer(dispatcher, data, evaluator)
	p.SetLogger(logger)
	return p, nil
}

// prioritizeRecords converts the records read from parser and prioritizes
// them with a worker pool. fn receives the results in input order.
// Unsupported records are logged and skipped.
func prioritizeRecords(ctx context.Context, parser vcf.RecordReader, converter *vcf.Converter,
	p prioritize.Prioritizer, workers int, fn func(prioritize.WorkResult) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make(chan prioritize.WorkItem, max(workers, 1)*2)
	g := new(errgroup.Group)
	g.Go(func() error {
		defer close(items)
		seq := 0
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := parser.Next()
			if err != nil {
				return fmt.Errorf("reading variant: %w", err)
			}
			if rec == nil {
				return nil
			}
			v, err := converter.Convert(rec)
			if errors.Is(err, vcf.ErrUnsupportedRecord) {
				logger.Warn("skipping record", zap.Error(err))
				continue
			}
			if err != nil {
				return err
			}
			if v == nil {
				continue
			}
			select {
			case items <- prioritize.WorkItem{Seq: seq, Variant: v, Extra: rec}:
				seq++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	collectErr := prioritize.OrderedCollect(ctx, prioritize.Parallel(ctx, p, items, workers), func(r prioritize.WorkResult) error {
		if err := fn(r); err != nil {
			// Stop reading input as soon as a result cannot be written.
			cancel()
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if collectErr != nil {
		return collectErr
	}
	return ctx.Err()
}

func priorityRecord(r prioritize.WorkResult) duckdb.PriorityRecord {
	region := r.Variant.Region
	if r.Variant.IsBreakend() && r.Variant.Left != nil {
		region = r.Variant.Left.Region
	}
	region = region.WithStrand(genome.Positive)
	return duckdb.PriorityRecord{
		Seq:       r.Seq,
		VariantID: r.Variant.ID,
		Contig:    region.Contig.Name,
		Start:     region.StartWith(genome.ZeroBased),
		End:       region.End,
		Type:      r.Variant.Type.String(),
		Priority:  r.Priority,
	}
}
