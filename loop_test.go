package sipfnode

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func loopNode(c *fakeCloud, b *fakeBoard, out *syncBuffer) *Node {
	n := testNode(&fakeModem{}, c, b, out)
	return n
}

func TestButtonRisingEdgeFiresOnce(t *testing.T) {
	c := &fakeCloud{file: []byte("hello")}
	b := &fakeBoard{}
	out := &syncBuffer{}
	n := loopNode(c, b, out)
	defer close(n.done)

	go n.loop()

	// Held button: exactly one download for the edge.
	b.setButton(1)
	waitFor(t, "download", func() bool { return c.downloadCount() == 1 })
	time.Sleep(20 * n.Pacer)
	assert.Equal(t, 1, c.downloadCount())

	// Falling edge fires nothing.
	b.setButton(0)
	time.Sleep(20 * n.Pacer)
	assert.Equal(t, 1, c.downloadCount())

	// Next rising edge fires again.
	b.setButton(1)
	waitFor(t, "second download", func() bool { return c.downloadCount() == 2 })
}

func TestButtonReadErrorNonFatal(t *testing.T) {
	c := &fakeCloud{}
	b := &fakeBoard{}
	fail := true
	b.buttonFn = func() (int, error) {
		if fail {
			return 0, errors.New("gpio fault")
		}
		return 1, nil
	}
	out := &syncBuffer{}
	n := loopNode(c, b, out)
	defer close(n.done)

	go n.loop()
	time.Sleep(20 * n.Pacer)
	assert.Equal(t, 0, c.downloadCount())

	b.mu.Lock()
	fail = false
	b.mu.Unlock()
	waitFor(t, "recovery download", func() bool { return c.downloadCount() == 1 })
}

func TestHeartbeatPeriod(t *testing.T) {
	b := &fakeBoard{}
	out := &syncBuffer{}
	n := loopNode(&fakeCloud{}, b, out)
	n.Heartbeat = 20 * time.Millisecond
	defer close(n.done)

	go n.loop()
	time.Sleep(210 * time.Millisecond)
	toggles := b.toggleCount()

	// ~10 periods elapsed; allow slack for the pacer and scheduler.
	assert.GreaterOrEqual(t, toggles, 5)
	assert.LessOrEqual(t, toggles, 12)
}

func TestDownloadOutput(t *testing.T) {
	c := &fakeCloud{file: []byte("0123456789")}
	b := &fakeBoard{}
	out := &syncBuffer{}
	n := loopNode(c, b, out)
	defer close(n.done)

	n.download()

	got := out.String()
	assert.Contains(t, got, "File download Button Pushed\r\n")
	assert.Contains(t, got, "30313233343536373839\r\n")
	assert.Contains(t, got, "Received: 10 bytes.\r\n")
	assert.NotContains(t, got, "FAILED")
	_, state := b.leds()
	assert.False(t, state, "state LED cleared after download")
}

func TestDownloadFailure(t *testing.T) {
	c := &fakeCloud{fileErr: errors.New("download")}
	b := &fakeBoard{}
	out := &syncBuffer{}
	n := loopNode(c, b, out)
	defer close(n.done)

	go n.loop()
	b.setButton(1)
	waitFor(t, "FAILED", func() bool { return strings.Contains(out.String(), "FAILED\r\n") })
	assert.NotContains(t, out.String(), "Received:")

	// The loop keeps running: heartbeat toggles remain observable.
	before := b.toggleCount()
	waitFor(t, "heartbeat", func() bool { return b.toggleCount() > before })
}

func TestChunkPrinter(t *testing.T) {
	out := &syncBuffer{}
	n := loopNode(&fakeCloud{}, &fakeBoard{}, out)
	defer close(n.done)

	full := make([]byte, workBufSize)
	assert.NoError(t, n.printChunk(full))
	got := out.String()
	assert.Len(t, got, 2*workBufSize, "2*len hex digits, no line break on a full chunk")
	assert.NotContains(t, got, "\r\n")

	assert.NoError(t, n.printChunk([]byte{0xde, 0xad, 0xbe, 0xef}))
	assert.True(t, strings.HasSuffix(out.String(), "deadbeef\r\n"))
}
