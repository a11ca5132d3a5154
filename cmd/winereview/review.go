package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"winereview/internal/persona"
	"winereview/internal/review"
)

var reviewFlags review.Request

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Generate (or fetch the cached) review for one request and print it",
	Example: `  winereview review --persona novice --varietal "Pinot Noir" --region Burgundy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		text, err := a.service.Generate(cmd.Context(), reviewFlags)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt a request would send, without calling any backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := persona.BuildPrompt(reviewFlags.Persona, reviewFlags.Varietal, reviewFlags.Region)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt)
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{reviewCmd, promptCmd} {
		c.Flags().StringVar(&reviewFlags.Persona, "persona", "", "newcomer, novice or connoisseur")
		c.Flags().StringVar(&reviewFlags.Varietal, "varietal", "", "grape varietal, e.g. \"Pinot Noir\"")
		c.Flags().StringVar(&reviewFlags.Region, "region", "", "wine region, e.g. Burgundy")
		_ = c.MarkFlagRequired("persona")
	}
}
