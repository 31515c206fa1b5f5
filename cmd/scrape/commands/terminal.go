package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// terminal is the human in the loop of a CLI portal session: it reads the
// CAPTCHA and manual-step confirmations from the console.
type terminal struct {
	in          *bufio.Reader
	out         io.Writer
	captchaPath string
}

func newTerminal(in io.Reader, out io.Writer, captchaPath string) *terminal {
	return &terminal{in: bufio.NewReader(in), out: out, captchaPath: captchaPath}
}

func (t *terminal) SolveCaptcha(ctx context.Context, image []byte) (string, error) {
	if len(image) > 0 && t.captchaPath != "" {
		if err := os.WriteFile(t.captchaPath, image, 0o644); err != nil {
			return "", fmt.Errorf("could not save captcha image: %w", err)
		}
		fmt.Fprintf(t.out, "CAPTCHA image saved to %s\n", t.captchaPath)
	}
	fmt.Fprint(t.out, "Enter the CAPTCHA: ")
	return t.readLine(ctx)
}

func (t *terminal) AwaitManualStep(ctx context.Context, instruction string) error {
	fmt.Fprintf(t.out, "\nManual step needed: %s\nPress ENTER when done...", instruction)
	_, err := t.readLine(ctx)
	return err
}

// readLine returns the next trimmed input line, or ctx's error if it ends
// first.
func (t *terminal) readLine(ctx context.Context) (string, error) {
	type read struct {
		line string
		err  error
	}
	ch := make(chan read, 1)
	go func() {
		line, err := t.in.ReadString('\n')
		ch <- read{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			return "", r.err
		}
		return strings.TrimSpace(r.line), nil
	}
}
