// Command taskdash serves the marketing task dashboard and exposes its
// aggregations on the command line.
package main

import (
	"context"
	"fmt"
	"os"

	apierrors "taskdash/internal/errors"
	"taskdash/internal/infrastructure"
)

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	infrastructure.CloseLogFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(apierrors.ExitCode(err))
	}
}
