package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rbright/reloadctl/internal/cli"
	"github.com/rbright/reloadctl/internal/patch"
	"github.com/rbright/reloadctl/internal/rendezvous"
	"github.com/rbright/reloadctl/internal/testutil/fakehost"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const fixtureSource = "impl Reloadable {\n    fn get_number(&self) -> i64 { 100 }\n}\n"

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, ExitOK, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"version"}, &stdout, &stderr)
	require.Equal(t, ExitOK, exitCode)
	require.Contains(t, stdout.String(), "reloadctl")
	require.Empty(t, stderr.String())
}

func TestExecuteUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"definitely-not-a-command"},
		{"await", "notify"},
		{"replace", "extra"},
		{"bogus", "--help"},
		{"await", "notify", "-h"},
		{"bogus", "--version"},
	} {
		var stdout bytes.Buffer
		var stderr bytes.Buffer

		exitCode := Execute(context.Background(), args, &stdout, &stderr)
		require.Equal(t, ExitUsage, exitCode, args)
		require.Contains(t, stdout.String(), "Usage:", args)
		require.Empty(t, stderr.String(), args)
	}
}

type runnerPaths struct {
	configPath string
	fixture    string
	notifyAddr string
	ackAddr    string
}

func freeUDPAddr(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	addr := conn.LocalAddr().String()
	require.NoError(t, conn.Close())
	return addr
}

func setupRunnerEnv(t *testing.T, notifyAddr string) runnerPaths {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	paths := runnerPaths{
		configPath: filepath.Join(dir, "reloadctl.toml"),
		fixture:    filepath.Join(dir, "lib.rs"),
		notifyAddr: notifyAddr,
		ackAddr:    freeUDPAddr(t),
	}
	if paths.notifyAddr == "" {
		paths.notifyAddr = freeUDPAddr(t)
	}

	require.NoError(t, os.WriteFile(paths.fixture, []byte(fixtureSource), 0o644))
	content := fmt.Sprintf(`
[notify]
addr = %q

[await]
addr = %q
timeout = "2s"

[patch]
path = %q
`, paths.notifyAddr, paths.ackAddr, paths.fixture)
	require.NoError(t, os.WriteFile(paths.configPath, []byte(content), 0o600))
	return paths
}

func TestRunnerReplaceRewritesFixture(t *testing.T) {
	paths := setupRunnerEnv(t, "")

	var stdout, stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "replace"})
	require.Equal(t, ExitOK, exitCode, stderr.String())
	require.Contains(t, stdout.String(), "Replaced 1 line(s)")
	require.Contains(t, stdout.String(), "Done\n")

	got, err := os.ReadFile(paths.fixture)
	require.NoError(t, err)
	require.Equal(t, "impl Reloadable {\n    fn get_number(&self) -> i64 { 777 }\n}\n", string(got))

	// A second run finds no sentinel.
	stdout.Reset()
	stderr.Reset()
	exitCode = runner.Execute(context.Background(), []string{"--config", paths.configPath, "replace"})
	require.Equal(t, ExitFailure, exitCode)
	require.Contains(t, stderr.String(), "sentinel line not found")
	require.NotContains(t, stdout.String(), "Done")
}

func TestRunnerReplaceMissingFileIsFailureNotCrash(t *testing.T) {
	paths := setupRunnerEnv(t, "")
	require.NoError(t, os.Remove(paths.fixture))

	var stdout, stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "replace"})
	require.Equal(t, ExitFailure, exitCode)
	require.Contains(t, stderr.String(), "error:")
}

func TestRunnerNotifyWithoutListenerSucceeds(t *testing.T) {
	paths := setupRunnerEnv(t, "")

	var stdout, stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "notify"})
	require.Equal(t, ExitOK, exitCode, stderr.String())
	require.Contains(t, stdout.String(), "Sent 6 bytes to "+paths.notifyAddr)
	require.Contains(t, stdout.String(), "Done")
}

func TestRunnerNotifySucceedsWhenLogFileUnavailable(t *testing.T) {
	paths := setupRunnerEnv(t, "")
	blocker := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))
	t.Setenv("XDG_STATE_HOME", blocker)

	var stdout, stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "notify"})
	require.Equal(t, ExitOK, exitCode, stderr.String())
	require.Contains(t, stderr.String(), "warning: logging disabled")
	require.Contains(t, stdout.String(), "Done")
}

func TestRunnerAwaitTimeout(t *testing.T) {
	paths := setupRunnerEnv(t, "")

	var stdout, stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	started := time.Now()
	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "--timeout", "300ms", "await"})
	require.Equal(t, ExitFailure, exitCode)
	require.GreaterOrEqual(t, time.Since(started), 300*time.Millisecond)
	require.Contains(t, stderr.String(), "timeout: no acknowledgment on "+paths.ackAddr+" within 300ms")
	require.Empty(t, stdout.String())
}

func TestRunnerAwaitAndNotifyRendezvous(t *testing.T) {
	hostConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	paths := setupRunnerEnv(t, hostConn.LocalAddr().String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hostDone := make(chan error, 1)
	go func() {
		hostDone <- fakehost.Serve(ctx, hostConn, paths.ackAddr, fakehost.AckOn("reload", "ok"))
	}()

	var awaitOut, awaitErr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		runner := Runner{Stdout: &awaitOut, Stderr: &awaitErr}
		if code := runner.Execute(ctx, []string{"--config", paths.configPath, "await"}); code != ExitOK {
			return fmt.Errorf("await exit code %d: %s", code, awaitErr.String())
		}
		return nil
	})

	// The acknowledgment port is busy once the awaiter has bound it.
	require.Eventually(t, func() bool {
		return rendezvous.Probe(paths.ackAddr) != nil
	}, time.Second, 10*time.Millisecond)

	var notifyOut, notifyErr bytes.Buffer
	notifier := Runner{Stdout: &notifyOut, Stderr: &notifyErr}
	require.Equal(t, ExitOK, notifier.Execute(ctx, []string{"--config", paths.configPath, "notify"}), notifyErr.String())

	require.NoError(t, g.Wait())
	require.Contains(t, awaitOut.String(), "Received 2 bytes from 127.0.0.1:")
	require.Contains(t, awaitOut.String(), "Done")

	cancel()
	require.NoError(t, <-hostDone)
}

func TestRunnerInvalidConfigFails(t *testing.T) {
	paths := setupRunnerEnv(t, "")
	require.NoError(t, os.WriteFile(paths.configPath, []byte("[await]\nbuffer_size = 0\n"), 0o600))

	var stdout, stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "await"})
	require.Equal(t, ExitFailure, exitCode)
	require.Contains(t, stderr.String(), "await.buffer_size")
}

func TestRunnerConfigWarningsGoToStderr(t *testing.T) {
	paths := setupRunnerEnv(t, "")
	content, err := os.ReadFile(paths.configPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(paths.configPath, append(content, []byte("\n[extra]\nkey = 1\n")...), 0o600))

	var stdout, stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "notify"})
	require.Equal(t, ExitOK, exitCode)
	require.Contains(t, stderr.String(), "warning: unknown key \"extra")
	require.NotContains(t, stderr.String(), "warning: line ")
}

func TestRunnerDoctor(t *testing.T) {
	paths := setupRunnerEnv(t, "")

	var stdout, stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "doctor"})
	require.Equal(t, ExitOK, exitCode, stdout.String())
	require.Contains(t, stdout.String(), "[OK] patch.target")
	require.Contains(t, stdout.String(), "[OK] await.addr")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Reason
	}{
		{name: "nil", err: nil, want: ReasonNone},
		{name: "usage", err: &cli.UsageError{Err: errors.New("bad")}, want: ReasonUsage},
		{name: "timeout", err: fmt.Errorf("%w after 1s", rendezvous.ErrTimeout), want: ReasonTimeout},
		{name: "cancelled", err: context.Canceled, want: ReasonCancelled},
		{name: "sentinel", err: fmt.Errorf("lib.rs: %w", patch.ErrSentinelNotFound), want: ReasonSentinelNotFound},
		{name: "file", err: &patch.FileError{Op: "read", Path: "lib.rs", Err: os.ErrNotExist}, want: ReasonIO},
		{name: "socket", err: errors.New("bind 127.0.0.1:1338: address already in use"), want: ReasonTransport},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, classify(tc.err))
		})
	}
}

func TestOutcomeExitCodes(t *testing.T) {
	require.Equal(t, ExitOK, succeeded(cli.CommandNotify, "sent").ExitCode())
	require.Equal(t, ExitFailure, failed(cli.CommandAwait, rendezvous.ErrTimeout).ExitCode())
	require.Equal(t, ExitUsage, failed(cli.CommandAwait, &cli.UsageError{Err: errors.New("x")}).ExitCode())
	require.Equal(t, "timeout: x", Outcome{Reason: ReasonTimeout, Message: "x"}.StatusLine())
}
