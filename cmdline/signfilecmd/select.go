package signfilecmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
	"github.com/patrickwbarnes/authenticode-scripts/lib/certstore"
)

// Selector picks one certificate when several match. The default prompts
// the operator; tests supply a deterministic one.
type Selector func(certs []*certstore.Certificate) (*certstore.Certificate, error)

func promptSelect(certs []*certstore.Certificate) (*certstore.Certificate, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, shared.Exit(ExitBadArgs,
			errors.New("multiple certificates match; pass --thumbprint to choose one non-interactively"))
	}
	return selectFrom(certs, os.Stdin, os.Stderr)
}

// selectFrom runs the numbered menu against the given streams.
func selectFrom(certs []*certstore.Certificate, in io.Reader, out io.Writer) (*certstore.Certificate, error) {
	fmt.Fprintln(out, "Multiple code-signing certificates found:")
	for i, cert := range certs {
		fmt.Fprintf(out, "  %d) %s\n     %s  %s  expires %s\n",
			i+1,
			cert.Cert.Subject,
			cert.Thumbprint,
			cert.Location,
			cert.Cert.NotAfter.Local().Format(time.DateOnly),
		)
	}
	reader := bufio.NewReader(in)
	for {
		fmt.Fprintf(out, "Select a certificate [1-%d]: ", len(certs))
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, shared.Exit(ExitBadArgs, fmt.Errorf("reading selection: %w", err))
		}
		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || choice < 1 || choice > len(certs) {
			fmt.Fprintln(out, "invalid selection")
			continue
		}
		return certs[choice-1], nil
	}
}
