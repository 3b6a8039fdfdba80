package factory

import (
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/elementsproject/lightning-integration/testframework"
)

const defaultLines = 30

// makeTestDir creates a fresh directory below base. Paths are kept short
// since lightningd puts its unix socket in there. The directory is removed
// after a passing test and kept for inspection otherwise.
func makeTestDir(t testing.TB, base string) string {
	t.Helper()
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatalf("create test dir base %s: %v", base, err)
	}
	dir, err := os.MkdirTemp(base, fmt.Sprintf("%d-", os.Getpid()))
	if err != nil {
		t.Fatalf("create test dir: %v", err)
	}
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("keeping test dir %s", dir)
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Logf("Failed to remove testDir %s: %v", dir, err)
		}
	})
	return dir
}

func logLines() int {
	if s, ok := os.LookupEnv("TEST_LOG_LINES"); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return defaultLines
}

func (f *Factory) printFailed() {
	f.mu.Lock()
	procs := append([]*testframework.DaemonProcess(nil), f.procs...)
	f.mu.Unlock()
	pprintFail(procs, logLines(), os.Getenv("TEST_LOG_FILTER"))
}

func pprintFail(procs []*testframework.DaemonProcess, lines int, filter string) {
	fmt.Printf("\n============================== FAILURE ==============================\n\n")
	for _, p := range procs {
		if p == nil {
			continue
		}
		fmt.Printf("+++++++++++++++++++++++++++++ %s (StdOut) +++++++++++++++++++++++++++++\n", p.Prefix())
		fmt.Printf("%s\n", p.StdOut.Tail(lines, filter))
		if p.StdErr.String() != "" {
			fmt.Printf("+++++++++++++++++++++++++++++ %s (StdErr) +++++++++++++++++++++++++++++\n", p.Prefix())
			fmt.Printf("%s\n", p.StdErr.String())
		}
		fmt.Printf("+++++++++++++++++++++++++++++ %s (End) +++++++++++++++++++++++++++++\n", p.Prefix())
		fmt.Printf("\n")
	}
}
