package console

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf)
	b.Print("Received: %d bytes.\r\n", 10)
	if got := buf.String(); got != "Received: 10 bytes.\r\n" {
		t.Errorf("got %q", got)
	}
}

func TestConcurrentLinesStayIntact(t *testing.T) {
	out := &lockedBuffer{}
	b := New(out)

	var wg sync.WaitGroup
	lines := []string{"SEARCHING\r\n", "REGISTERD\r\n", "TIMEOUT\r\n"}
	for _, line := range lines {
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(s string) {
				defer wg.Done()
				b.Puts(s)
			}(line)
		}
	}
	wg.Wait()

	got := out.String()
	for _, line := range lines {
		if strings.Count(got, line) != 50 {
			t.Errorf("line %q: want 50 copies, got %d", strings.TrimSpace(line), strings.Count(got, line))
		}
	}
	// No partial interleavings: total length accounts for every write.
	want := 50 * (len(lines[0]) + len(lines[1]) + len(lines[2]))
	if len(got) != want {
		t.Errorf("output length %d, want %d", len(got), want)
	}
}

func TestTapReceivesWrites(t *testing.T) {
	b := New(&bytes.Buffer{})
	tap := b.attach()
	defer b.detach(tap)

	b.Puts("+++ Ready +++\r\n")
	select {
	case s := <-tap:
		if s != "+++ Ready +++\r\n" {
			t.Errorf("got %q", s)
		}
	default:
		t.Error("tap got nothing")
	}
}

func TestSlowTapDropsInsteadOfBlocking(t *testing.T) {
	b := New(&bytes.Buffer{})
	tap := b.attach()
	defer b.detach(tap)

	for i := 0; i < 2*cap(tap); i++ {
		b.Puts("x")
	}
	if n := len(tap); n != cap(tap) {
		t.Errorf("tap holds %d, want %d", n, cap(tap))
	}
}
