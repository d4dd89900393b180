package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alejandrodlv/facelock/internal/facelock/service"
)

// RunPINSession drives one interactive PIN entry session, reading PINs from
// in and writing prompts to out.  The session ends on a correct PIN, on the
// attempt limit, or on empty/EOF input (cancel).  Decisions are emitted by
// the decider; this function only does the prompting.
func RunPINSession(ctx context.Context, d *service.Decider, in io.Reader, out io.Writer) error {
	if err := d.StartPIN(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "PIN (4-6 digits, empty to cancel): ")
		if !scanner.Scan() {
			d.CancelPIN()
			fmt.Fprintln(out, "\ncancelled")
			return scanner.Err()
		}

		outcome, err := d.SubmitPIN(ctx, strings.TrimSpace(scanner.Text()))
		if err != nil {
			d.CancelPIN()
			return err
		}

		switch outcome.Result {
		case service.PINGranted:
			fmt.Fprintf(out, "access granted for %s\n", outcome.UserName)
			return nil
		case service.PINRetry:
			fmt.Fprintf(out, "wrong PIN (%d attempts left)\n", outcome.AttemptsLeft)
		case service.PINLocked:
			fmt.Fprintln(out, "too many attempts, access denied")
			return nil
		case service.PINCancelled:
			fmt.Fprintln(out, "cancelled")
			return nil
		}
	}
}
