package bench

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tkjaer/echobench/internal/config"
	"github.com/tkjaer/echobench/internal/shared"
)

// echoServer is a stub target. reply maps the index of the accepted
// connection and the received bytes to the bytes sent back; a nil result
// means hold the connection open without replying.
type echoServer struct {
	ln       net.Listener
	accepted atomic.Int32
	wg       sync.WaitGroup
}

func startEchoServer(t *testing.T, reply func(conn int, in []byte) []byte) *echoServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	s := &echoServer{ln: ln}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			idx := int(s.accepted.Add(1)) - 1
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer conn.Close()
				buf := make([]byte, 1024)
				n, err := conn.Read(buf)
				if err != nil {
					return
				}
				out := reply(idx, buf[:n])
				if out == nil {
					// Wait for the client to give up.
					conn.Read(buf)
					return
				}
				conn.Write(out)
			}()
		}
	}()

	t.Cleanup(func() {
		ln.Close()
		s.wg.Wait()
	})
	return s
}

func (s *echoServer) port() uint {
	return uint(s.ln.Addr().(*net.TCPAddr).Port)
}

func echo(conn int, in []byte) []byte {
	return append([]byte(nil), in...)
}

func flipFirstByte(conn int, in []byte) []byte {
	out := append([]byte(nil), in...)
	out[0] ^= 0xff
	return out
}

// refusedPort returns a local port with nothing listening on it.
func refusedPort(t *testing.T) uint {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	port := uint(ln.Addr().(*net.TCPAddr).Port)
	ln.Close()
	return port
}

func testArgs(t *testing.T, port, rounds, workers uint) config.Args {
	t.Helper()
	a := config.Defaults()
	a.Port = port
	a.Rounds = rounds
	a.Workers = workers
	a.Output = filepath.Join(t.TempDir(), "bench.txt")
	a.StallWarn = 0
	return a
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	return lines
}

// recordingOutput collects everything the output manager hands it.
type recordingOutput struct {
	mu      sync.Mutex
	results []shared.WorkerResult
	rounds  []uint
	aborts  []string
	closed  bool
}

func (r *recordingOutput) RecordResult(res shared.WorkerResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return nil
}

func (r *recordingOutput) CompleteRound(round uint, workers int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds = append(r.rounds, round)
}

func (r *recordingOutput) AbortRun(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborts = append(r.aborts, reason)
}

func (r *recordingOutput) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// runWithTimeout fails the test if Run does not return in time.
func runWithTimeout(t *testing.T, b *Benchmark) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- b.Run(t.Context()) }()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("Run() did not return")
		return nil
	}
}
