// =============================================================================
// TORG12 Parser - Vocabulary Command
// =============================================================================
//
// This file defines the 'vocabulary' command, which prints the effective
// recognition settings as YAML. The output can be pasted into torg12.yaml
// as a starting point for customization.
//
// COMMAND USAGE:
//   torg12 vocabulary [--profile CODE]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/torg12/internal/config"
)

// vocabularyProfile applies a supplier profile before printing.
var vocabularyProfile string

var vocabularyCmd = &cobra.Command{
	Use:   "vocabulary",
	Short: "Print the effective tax rates and header vocabulary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVocabulary(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(vocabularyCmd)

	vocabularyCmd.Flags().StringVar(&vocabularyProfile, "profile", "", "Apply the supplier profile with this code")
}

func runVocabulary(w io.Writer) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	effective := env.cfg.Parser
	if vocabularyProfile != "" {
		profile := config.ProfileByCode(env.profiles, vocabularyProfile)
		if profile == nil {
			return fmt.Errorf("unknown supplier profile %q", vocabularyProfile)
		}
		effective = profile.Apply(effective)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(effective); err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}
	return enc.Close()
}
