package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check JSON documents against a payload or response schema",
	Long: `Validates each file against the candidate, project or match schema and lists
every violation. Candidate and project payloads that fail still load during
matching with defaults applied; this command shows what will be defaulted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

var validateSchema string

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Schema to check against: candidate, project or match (required)")
	_ = validateCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	name, err := schemas.ParseName(validateSchema)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		err := schemas.ValidateFile(name, path)
		if err == nil {
			fmt.Fprintf(out, "ok      %s\n", path)
			continue
		}
		failed++
		fields := schemas.FieldErrors(err)
		if fields == nil {
			fmt.Fprintf(out, "error   %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "invalid %s\n", path)
		for _, f := range fields {
			fmt.Fprintf(out, "        %s\n", f)
		}
		logger.Debug("schema violations", zap.String("path", path), zap.Int("count", len(fields)))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed %s", failed, len(args), name)
	}
	return nil
}
