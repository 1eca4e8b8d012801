package cmd

import (
	"fmt"
	"os"

	"revenue-analytics-service/pkg/errors"
	"revenue-analytics-service/pkg/logger"
)

// CLIErrorHandler handles errors at the CLI level, translating them
// into user-friendly messages and appropriate exit codes.
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger(),
		verbose: verbose,
	}
}

// HandleError processes an error and returns the exit code the process
// should terminate with.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	analyticsErr, ok := errors.AsAnalyticsError(err)
	if !ok {
		// Non-categorized error: report it plainly
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		h.logger.WithError(err).Error("Unhandled error")
		return 1
	}

	h.printUserMessage(analyticsErr)

	h.logger.WithFields(logger.Fields{
		"category": analyticsErr.Category,
		"code":     analyticsErr.Code,
	}).WithError(analyticsErr).Error("Command failed")

	if h.verbose && len(analyticsErr.StackTrace) > 0 {
		fmt.Fprintf(os.Stderr, "\nStack trace:%+v\n", analyticsErr.StackTrace)
	}

	return errors.GetExitCode(analyticsErr)
}

// printUserMessage writes a concise, actionable message to stderr.
func (h *CLIErrorHandler) printUserMessage(err *errors.AnalyticsError) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", err.Suggestion)
	}

	if len(err.Context) > 0 {
		fmt.Fprintln(os.Stderr, "Details:")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Cause != nil && h.verbose {
		fmt.Fprintf(os.Stderr, "Caused by: %v\n", err.Cause)
	}
}
