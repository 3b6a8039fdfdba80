package testframework

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/elementsproject/lightning-integration/log"
	"golang.org/x/sys/unix"
)

// StopGracePeriod is how long a daemon gets to exit after SIGTERM before it
// is killed.
const StopGracePeriod = 3 * time.Second

// DaemonProcess runs one external daemon and captures its output so tests
// can wait for log lines. A stopped process can be started again; the
// captured output survives restarts but HasLog and WaitForLog only see the
// output of the current run.
type DaemonProcess struct {
	sync.Mutex

	CmdLine []string
	Cmd     *exec.Cmd
	StdOut  *lockedWriter
	StdErr  *lockedWriter
	Env     []string
	Dir     string

	prefix    string
	logFile   string
	isRunning bool
	exited    chan struct{}
}

func NewDaemonProcess(cmdline []string, prefix string) *DaemonProcess {
	return &DaemonProcess{
		CmdLine: cmdline,
		StdOut:  &lockedWriter{prefix: []byte(fmt.Sprintf("%s: ", prefix))},
		StdErr:  &lockedWriter{prefix: []byte(fmt.Sprintf("%s: ", prefix))},
		prefix:  prefix,
	}
}

// SaveLogTo makes Stop write the captured output to path.
func (d *DaemonProcess) SaveLogTo(path string) {
	d.logFile = path
}

func (d *DaemonProcess) Run() error {
	d.Lock()
	defer d.Unlock()
	if d.isRunning {
		return nil
	}
	if len(d.CmdLine) == 0 {
		return errors.New("empty command line")
	}

	d.StdOut.markRun()
	d.StdErr.markRun()

	cmd := exec.Command(d.CmdLine[0], d.CmdLine[1:]...)
	cmd.Stdout = d.StdOut
	cmd.Stderr = d.StdErr
	if d.Env != nil {
		cmd.Env = append(os.Environ(), d.Env...)
	}
	cmd.Dir = d.Dir
	cmd.WaitDelay = StopGracePeriod
	setParentDeathSignal(cmd)

	if err := cmd.Start(); err != nil {
		fmt.Fprintln(d.StdErr, "error starting cmd", err)
		return fmt.Errorf("start %s: %w", d.CmdLine[0], err)
	}
	log.Debugf("[%s] started %s (pid %d)", d.prefix, strings.Join(d.CmdLine, " "), cmd.Process.Pid)

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	d.Cmd = cmd
	d.exited = exited
	d.isRunning = true
	return nil
}

// Stop sends SIGTERM and kills the process if it is still alive after
// StopGracePeriod.
func (d *DaemonProcess) Stop() error {
	d.Lock()
	defer d.Unlock()
	if !d.isRunning {
		return nil
	}
	d.isRunning = false

	pid := d.Cmd.Process.Pid
	if err := unix.Kill(pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		log.Warnf("[%s] SIGTERM: %v", d.prefix, err)
	}

	select {
	case <-d.exited:
	case <-time.After(StopGracePeriod):
		_ = d.Cmd.Process.Kill()
		<-d.exited
	}
	return d.saveLog()
}

func (d *DaemonProcess) Kill() {
	d.Lock()
	defer d.Unlock()
	if d.isRunning {
		_ = d.Cmd.Process.Kill()
		<-d.exited
		d.isRunning = false
		_ = d.saveLog()
	}
}

func (d *DaemonProcess) IsRunning() bool {
	d.Lock()
	defer d.Unlock()
	return d.isRunning
}

func (d *DaemonProcess) saveLog() error {
	if d.logFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(d.logFile), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(d.logFile, []byte(d.StdOut.String()+d.StdErr.String()), 0o644)
}

// HasLog reports whether the current run printed a line matching regex.
func (d *DaemonProcess) HasLog(regex string) (bool, error) {
	rx, err := regexp.Compile(regex)
	if err != nil {
		return false, fmt.Errorf("Compile(regex) %w", err)
	}

	for _, w := range []*lockedWriter{d.StdOut, d.StdErr} {
		scanner := bufio.NewScanner(strings.NewReader(w.sinceRun()))
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if rx.MatchString(scanner.Text()) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (d *DaemonProcess) WaitForLog(regex string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return fmt.Errorf("timeout reached while waiting for `%s` in logs", regex)
		default:
			ok, err := d.HasLog(regex)
			if err != nil {
				return fmt.Errorf("HasLog() %w", err)
			}
			if ok {
				return nil
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
}

func (d *DaemonProcess) Prefix() string {
	return d.prefix
}

// lockedWriter keeps everything a process wrote. The prefix is used when
// the buffer is dumped next to the output of other daemons.
type lockedWriter struct {
	sync.RWMutex

	prefix []byte
	buf    []byte
	// run is where the output of the current run starts.
	run int
}

func (w *lockedWriter) Write(b []byte) (n int, err error) {
	w.Lock()
	defer w.Unlock()
	w.buf = append(w.buf, b...)
	return len(b), nil
}

func (w *lockedWriter) String() string {
	w.RLock()
	defer w.RUnlock()

	return string(w.buf)
}

func (w *lockedWriter) markRun() {
	w.Lock()
	defer w.Unlock()
	w.run = len(w.buf)
}

func (w *lockedWriter) sinceRun() string {
	w.RLock()
	defer w.RUnlock()
	return string(w.buf[w.run:])
}

// Tail returns the last n lines matching regex, each prefixed with the
// daemon name. n < 1 returns all matching lines.
func (w *lockedWriter) Tail(n int, regex string) string {
	w.RLock()
	defer w.RUnlock()

	rx, err := regexp.Compile(regex)
	if err != nil {
		return ""
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(w.buf))
	for scanner.Scan() {
		if rx.Match(scanner.Bytes()) {
			lines = append(lines, string(w.prefix)+scanner.Text())
		}
	}

	if n < 1 || n > len(lines) {
		n = len(lines)
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

var _ io.Writer = (*lockedWriter)(nil)
