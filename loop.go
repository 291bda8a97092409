package sipfnode

import (
	"context"
	"encoding/hex"
	"time"
)

// loop is the operational phase: heartbeat the state LED, watch for a
// rising edge on the send button, and run a file download per press.
// It never exits; persistent button faults are logged and skipped.
func (n *Node) loop() {
	deadline := time.Now().Add(n.Heartbeat)
	btnPrev := 0
	for {
		select {
		case <-n.done:
			return
		default:
		}

		if now := time.Now(); now.After(deadline) {
			deadline = now.Add(n.Heartbeat)
			n.Board.ToggleStateLED()
		}

		btn, err := n.Board.ReadButton()
		if err != nil {
			n.log.WithError(err).Error("button read failed")
		} else {
			if btnPrev == 0 && btn == 1 {
				n.download()
			}
			btnPrev = btn
		}

		time.Sleep(n.Pacer)
	}
}

// download runs one button-triggered file download with the state LED
// held solid as a busy indicator.
func (n *Node) download() {
	n.Console.Puts("File download Button Pushed\r\n")
	n.Board.SetStateLED(true)
	recvLen, err := n.Cloud.FileDownload(context.Background(), sampleFileName, nil, n.workBuf[:], n.printChunk)
	if err != nil {
		n.log.WithError(err).Debug("file download failed")
		n.Console.Puts("FAILED\r\n")
	} else {
		n.Console.Print("Received: %d bytes.\r\n", recvLen)
	}
	n.Board.SetStateLED(false)
}

// printChunk dumps one received chunk as lowercase hex.  A short chunk
// is the file's tail, so it also terminates the hex line.
func (n *Node) printChunk(chunk []byte) error {
	n.Console.Puts(hex.EncodeToString(chunk))
	if len(chunk) < len(n.workBuf) {
		n.Console.Puts("\r\n")
	}
	return nil
}
