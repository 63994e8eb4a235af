package framework

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	failColor = color.New(color.FgRed)
	skipColor = color.New(color.FgYellow)
	passColor = color.New(color.FgGreen)
)

// ConsoleTestLogger reports test progress on standard output.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Printf("  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	if failed {
		failColor.Printf("  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(os.Stdout, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		skipColor.Printf("  SKIPPED: %s\n", id)
	} else {
		skipColor.Printf("  SKIPPED: %s (%s)\n", id, reason)
	}
}

// PrintResults prints a summary of a completed run on standard output.
func PrintResults(results Results) {
	if results.OK() {
		passColor.Printf("All %d tests passed\n", len(results.Tests))
		return
	}
	failColor.Printf("FAILED TESTS (%d/%d):\n", len(results.Failures), len(results.Tests))
	for _, f := range results.Failures {
		fmt.Printf("  * %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Printf("    %s\n", line)
			}
		}
	}
}
