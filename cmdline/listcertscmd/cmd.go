package listcertscmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
	"github.com/patrickwbarnes/authenticode-scripts/lib/certstore"
	"github.com/patrickwbarnes/authenticode-scripts/lib/x509tools"
)

var Command = &cobra.Command{
	Use:               "listcerts",
	Short:             "List code-signing certificates from the system stores",
	Args:              cobra.NoArgs,
	PersistentPreRunE: shared.InitConfig,
	RunE:              listCmd,
	SilenceUsage:      true,
}

// OpenStore is replaced by tests.
var OpenStore = certstore.Open

func init() {
	shared.Register(Command)
}

func listCmd(cmd *cobra.Command, args []string) error {
	store, err := OpenStore()
	if err != nil {
		return shared.Fail(err)
	}
	defer store.Close()
	certs, err := store.List(cmd.Context())
	if err != nil {
		return shared.Fail(err)
	}
	List(cmd.OutOrStdout(), certs)
	return nil
}

// List dumps every certificate followed by a total count.
func List(w io.Writer, certs []*certstore.Certificate) {
	for _, cert := range certs {
		PrintCertificate(w, cert)
		fmt.Fprintln(w, strings.Repeat("-", 40))
	}
	fmt.Fprintf(w, "%d certificate(s) found\n", len(certs))
}

// PrintCertificate dumps one store certificate with its store-level
// attributes.
func PrintCertificate(w io.Writer, cert *certstore.Certificate) {
	x509tools.FprintCertificate(w, cert.Cert)
	fmt.Fprintln(w, "Thumbprint:", cert.Thumbprint)
	fmt.Fprintln(w, "Store:", cert.Location)
	if cert.FriendlyName != "" {
		fmt.Fprintln(w, "Friendly name:", cert.FriendlyName)
	}
}
