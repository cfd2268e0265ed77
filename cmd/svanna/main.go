// Package main provides the svanna command-line tool.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logger is configured by the root command before any subcommand runs.
var logger = zap.NewNop()

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "svanna",
		Short: "Structural variant prioritization",
		Long: `svanna ranks structural variants by how much they disturb the genes and
enhancers of the topologically associating domains they touch.`,
		Example: `  # Load the landscape into the feature store (one-time setup)
  svanna download --assembly GRCh38
  svanna ingest --enhancers enhancers.tsv --tads tads.tsv

  # Prioritize the variants of a VCF file
  svanna prioritize --gene-weights weights.tsv calls.vcf.gz`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			l, err := newLogger(viper.GetBool(keyVerbose))
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ~/.svanna.yaml)")
	flags.BoolP("verbose", "v", false, "Enable development logging")
	flags.String("db", "", "DuckDB feature store (default: ~/.svanna/svanna.duckdb)")
	flags.String("assembly", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	bindFlags(flags, map[string]string{
		keyVerbose:  "verbose",
		keyDB:       "db",
		keyAssembly: "assembly",
	})

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newPrioritizeCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "svanna version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig reads an optional .env file, the config file and SVANNA_*
// environment variables.
func initConfig(cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	setDefaults()
	viper.SetEnvPrefix("SVANNA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".svanna")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// dataDir returns the directory holding downloads and the default store.
func dataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".svanna"), nil
}

// dbPath returns the configured feature store path.
func dbPath() (string, error) {
	if p := viper.GetString(keyDB); p != "" {
		return p, nil
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "svanna.duckdb"), nil
}
