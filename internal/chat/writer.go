package chat

import (
	"bufio"
	"io"
)

// startOutboundWriter drains out into w until done is closed. Lines already
// queued when done closes are still written. The returned channel closes
// when the writer has exited.
func startOutboundWriter(w io.Writer, out <-chan string, done <-chan struct{}) <-chan struct{} {
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		bw := bufio.NewWriter(w)
		write := func(msg string) bool {
			// Best-effort. If the connection breaks, just stop the writer.
			if _, err := bw.WriteString(msg + "\n"); err != nil {
				return false
			}
			return bw.Flush() == nil
		}

		for {
			select {
			case msg := <-out:
				if !write(msg) {
					return
				}
			case <-done:
				for {
					select {
					case msg := <-out:
						if !write(msg) {
							return
						}
					default:
						return
					}
				}
			}
		}
	}()
	return finished
}
