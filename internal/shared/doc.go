// Package shared holds helpers used by more than one layer of taskdash.
//
// The testutil subpackage provides:
//
//	- a buffered slog handler for asserting log output
//	- a sample data directory with every input file the loader reads
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    files := testutil.NewDataDir(t)
//
//	    // exercise code with logger and files
//	    testutil.AssertLogContains(t, logs, slog.LevelWarn, "File not found")
//	}
//
// Nothing here is imported by production code.
package shared
