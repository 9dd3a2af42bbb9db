package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/runebound/internal/archive"
	"github.com/roach88/runebound/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Records  int                        `json:"records"`
	Files    int                        `json:"files"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [content-dir]",
		Short: "Validate a content directory",
		Long: `Load every .cue and .yaml content file in a directory, check that
the names records mention exist and report effect attach cycles.

Without an argument the configured content_dir is validated.

Exit codes:
  0 - Content valid (cycle warnings do not fail)
  1 - Compile or reference errors
  2 - Command error (missing directory, no files)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.settings().ContentDir
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	arc, err := archive.Load(cmd.Context(), dir)
	if err != nil {
		var loadErrs archive.LoadErrors
		if !errors.As(err, &loadErrs) || len(loadErrs) == 0 {
			return outputValidateError(formatter, archive.ErrCodeGeneric, err.Error(), nil)
		}
		if isCommandError(loadErrs) {
			return outputValidateError(formatter, loadErrs[0].Code, loadErrs[0].Message, nil)
		}
		return outputLoadErrors(formatter, loadErrs)
	}

	formatter.VerboseLog("Loaded %d record(s) from %d file(s) in %s", arc.Bundle().Len(), arc.FileCount(), dir)

	result := ValidationResult{
		Valid:    true,
		Records:  arc.Bundle().Len(),
		Files:    arc.FileCount(),
		Errors:   compiler.Validate(arc.Bundle()),
		Warnings: compiler.AnalyzeCycles(arc.Bundle()),
	}
	if len(result.Errors) > 0 {
		result.Valid = false
		return outputValidationErrors(formatter, result)
	}

	return outputValidateSuccess(formatter, result)
}

// isCommandError reports whether a load failed before any file was read.
func isCommandError(errs archive.LoadErrors) bool {
	if len(errs) != 1 {
		return false
	}
	switch errs[0].Code {
	case archive.ErrCodeNotFound, archive.ErrCodeNoFiles, archive.ErrCodeScanError:
		return true
	}
	return false
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	warnings := make([]string, len(result.Warnings))
	for i, w := range result.Warnings {
		warnings[i] = w.Message
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithWarnings(result, warnings)
	}

	msg := fmt.Sprintf("✓ All content valid (%d records in %d files)", result.Records, result.Files)
	return formatter.SuccessWithWarnings(msg, warnings)
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputLoadErrors outputs compile errors found while loading.
func outputLoadErrors(formatter *OutputFormatter, errs archive.LoadErrors) error {
	if formatter.Format == "json" {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		_ = formatter.Error(errs[0].Code, errs[0].Message, lines)
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Content failed to load")
		fmt.Fprintln(formatter.Writer)
		for _, e := range errs {
			fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("load failed with %d error(s)", len(errs)))
}

// outputValidationErrors outputs dangling reference errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", err.Code, err.Field)
		fmt.Fprintf(formatter.Writer, "    %s\n\n", err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
