// Conformance runner: drives one of the built-in publishers through a
// scripted sequence of request/cancel steps and reports any delivery-rule
// violations. Exits non-zero when the publisher misbehaves.
//
// Script files contain one step per line:
//
//	request 3
//	request unbounded
//	cancel
//
// Blank lines and lines starting with # are skipped.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/snayrouz/combine-go/internal/logging"
	"github.com/snayrouz/combine-go/pkg/pub"
	"github.com/snayrouz/combine-go/pkg/rs"
	"github.com/snayrouz/combine-go/pkg/tck"
)

var (
	publisher string
	count     int
	file      string
	logLevel  string
)

func init() {
	flag.StringVar(&publisher, "publisher", "slice", "Publisher under test: just, slice, empty, fail")
	flag.IntVar(&count, "count", 10, "For the slice publisher, how many elements to emit")
	flag.StringVar(&file, "file", "", "Path to script file to run; omit for the default script")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	logger, err := logging.New(logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	p, err := buildPublisher(publisher, count)
	if err != nil {
		logger.Fatal("bad publisher", zap.Error(err))
	}

	script := defaultScript()
	if file != "" {
		script, err = readScript(file)
		if err != nil {
			logger.Fatal("bad script", zap.Error(err))
		}
	}

	start := time.Now()
	violations := tck.Check(p, script)
	for _, v := range violations {
		logger.Error("violation", zap.String("rule", v.Rule), zap.String("detail", v.Detail))
	}
	if len(violations) > 0 {
		os.Exit(1)
	}
	logger.Info("conformance passed",
		zap.String("publisher", publisher),
		zap.Int("steps", len(script)),
		zap.Duration("took", time.Since(start)))
}

func buildPublisher(name string, n int) (rs.Publisher[int], error) {
	switch name {
	case "just":
		return pub.Just(42), nil
	case "slice":
		vs := make([]int, n)
		for i := range vs {
			vs[i] = i
		}
		return pub.FromSlice(vs), nil
	case "empty":
		return pub.Empty[int](), nil
	case "fail":
		return pub.Fail[int](errors.New("scripted failure")), nil
	default:
		return nil, fmt.Errorf("unknown publisher %q", name)
	}
}

// Incremental requests, then opening the floodgates, then a cancel that a
// conforming finite publisher has usually beaten to the punch.
func defaultScript() []tck.Step {
	return []tck.Step{
		{Request: rs.MaxDemand(1)},
		{Request: rs.MaxDemand(2)},
		{Request: rs.UnboundedDemand},
		{Cancel: true},
	}
}

func readScript(path string) ([]tck.Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var steps []tck.Step
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		switch {
		case parts[0] == "cancel" && len(parts) == 1:
			steps = append(steps, tck.Step{Cancel: true})
		case parts[0] == "request" && len(parts) == 2 && parts[1] == "unbounded":
			steps = append(steps, tck.Step{Request: rs.UnboundedDemand})
		case parts[0] == "request" && len(parts) == 2:
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				return nil, fmt.Errorf("bad step %q: %w", line, err)
			}
			steps = append(steps, tck.Step{Request: rs.MaxDemand(n)})
		default:
			return nil, fmt.Errorf("bad step %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}
