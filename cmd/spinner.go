package cmd

import (
	"fmt"
	"strings"
	"time"
)

// spinner is a single-line progress indicator for long generation calls.
type spinner struct {
	message string
	width   int
	stop    chan struct{}
	done    chan struct{}
}

// startSpinner shows message with a spinner, or just prints it in verbose mode.
// The returned func stops the spinner and prints the outcome line.
func startSpinner(message string) (finish func(outcome string)) {
	if getVerbose() {
		fmt.Println(message)
		finish = func(outcome string) {
			if outcome != "" {
				fmt.Println(outcome)
			}
		}
		return finish
	}

	s := &spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run()

	finish = func(outcome string) {
		close(s.stop)
		<-s.done
		if outcome != "" {
			fmt.Println(outcome)
		}
	}
	return finish
}

func (s *spinner) run() {
	frames := []string{"|", "/", "-", "\\"}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.stop:
			fmt.Printf("\r%s\r", strings.Repeat(" ", s.width))
			close(s.done)
			return
		case <-ticker.C:
			line := s.message + " " + frames[i%len(frames)]
			if len(line) > s.width {
				s.width = len(line)
			}
			fmt.Printf("\r%s", line)
		}
	}
}
