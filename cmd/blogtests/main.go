// Command blogtests runs the sample blog application's test suites through
// the fixture harness: the simulated-client suites always run, and the live
// suite serves the application on a real socket first.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alessio/shellescape"

	"github.com/appunit/appunit/framework"
	"github.com/appunit/appunit/harness"
	"github.com/appunit/appunit/sampleapp"
)

const defaultPort = 5000

type commandParams struct {
	host     string
	port     int
	timeout  time.Duration
	filters  framework.RegexFilters
	skipLive bool
	debug    bool
	debugAll bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.host, "host", "127.0.0.1", "host the live server will bind to")
	fs.IntVar(&c.port, "port", defaultPort, "port the live server will listen on")
	fs.DurationVar(&c.timeout, "timeout", time.Second*10, "how long to wait for the live server to accept connections")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.skipLive, "no-live", false, "skip the live-endpoint suite")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	return true
}

func (c commandParams) describe(name string) string {
	var b commandBuilder
	b.add(name)
	b.add("-host", c.host, "-port", strconv.Itoa(c.port), "-timeout", c.timeout.String())
	if c.skipLive {
		b.add("-no-live")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	fmt.Printf("Running: %s\n\n", params.describe(os.Args[0]))
	framework.PrintFilterDescription(params.filters)

	testLogger := &framework.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	runner := &harness.Runner{
		Filter: params.filters.AsFilter,
		Logger: testLogger,
	}

	ok := true

	sharedApp, err := sampleapp.New(sampleapp.Config{})
	if err != nil {
		fatal(err)
	}
	authCase, err := sampleapp.AuthCase(sharedApp)
	if err != nil {
		fatal(err)
	}
	blogCase, err := sampleapp.BlogCase()
	if err != nil {
		fatal(err)
	}

	fmt.Println("Running simulated-client suites")
	results, err := runner.Run(harness.NewSuite("blogapp",
		harness.Leaf(authCase),
		harness.Leaf(blogCase),
	))
	if err != nil {
		fatal(err)
	}
	fmt.Println()
	framework.PrintResults(results)
	ok = ok && results.OK()

	if !params.skipLive {
		liveApp, err := sampleapp.New(sampleapp.Config{Settings: map[string]string{
			"HOST": params.host,
			"PORT": strconv.Itoa(params.port),
		}})
		if err != nil {
			fatal(err)
		}
		liveSuite, err := harness.NewLiveSuite(liveApp, params.timeout,
			harness.Leaf(sampleapp.LiveSmokeCase()),
		)
		if err != nil {
			fatal(err)
		}

		fmt.Printf("\nRunning live suite at %s\n", liveSuite.ServerURL())
		results, err = liveSuite.Run(runner)
		if err != nil {
			fatal(err)
		}
		fmt.Println()
		framework.PrintResults(results)
		ok = ok && results.OK()
	}

	if !ok {
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Fatal error: %s\n", err)
	os.Exit(1)
}
