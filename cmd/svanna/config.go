package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration keys.
const (
	keyDB                  = "db"
	keyAssembly            = "assembly"
	keyVerbose             = "verbose"
	keyThreads             = "n-threads"
	keyGeneFactor          = "prioritization.gene-factor"
	keyEnhancerFactor      = "prioritization.enhancer-factor"
	keyPromoterLength      = "prioritization.promoter-length"
	keyPromoterFitnessGain = "prioritization.promoter-fitness-gain"
	keyStabilityThreshold  = "prioritization.tad-stability-threshold"
	keyForceTadEvaluation  = "prioritization.force-tad-evaluation"
	keyGranular            = "prioritization.granular"
)

func setDefaults() {
	viper.SetDefault(keyAssembly, "GRCh38")
	viper.SetDefault(keyThreads, 0)
	viper.SetDefault(keyGeneFactor, 1.0)
	viper.SetDefault(keyEnhancerFactor, 1.0)
	viper.SetDefault(keyPromoterLength, 500)
	viper.SetDefault(keyPromoterFitnessGain, 0.0)
	viper.SetDefault(keyStabilityThreshold, 80.0)
	viper.SetDefault(keyForceTadEvaluation, false)
	viper.SetDefault(keyGranular, false)
}

// bindFlags binds config keys to flags of the same command.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %q: %v", name, err))
		}
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage svanna configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.svanna.yaml.",
		Example: `  svanna config                                        # show all config
  svanna config set prioritization.promoter-length 1000 # widen promoters
  svanna config get prioritization.granular             # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	out, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	// Parse boolean-like values
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		viper.Set(key, value)
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".svanna.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}
