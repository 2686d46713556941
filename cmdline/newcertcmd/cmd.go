package newcertcmd

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/patrickwbarnes/authenticode-scripts/cmdline/listcertscmd"
	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
	"github.com/patrickwbarnes/authenticode-scripts/lib/certstore"
	"github.com/patrickwbarnes/authenticode-scripts/lib/x509tools"
)

const (
	// DefaultSubject is used when the operator does not name one.
	DefaultSubject = "CN=Authenticode Test"

	exitBadArgs = 1
)

var Command = &cobra.Command{
	Use:               "newcert [subject]",
	Short:             "Create a self-signed code-signing certificate for test signing",
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: shared.InitConfig,
	RunE:              newCertCmd,
	SilenceUsage:      true,
}

var argSubject string

// OpenStore is replaced by tests.
var OpenStore = certstore.Open

func init() {
	shared.Register(Command)
	Command.Flags().StringVarP(&argSubject, "subject", "n", "", "Subject name of the new certificate")
}

func newCertCmd(cmd *cobra.Command, args []string) error {
	subject := argSubject
	if subject == "" && len(args) > 0 {
		subject = args[0]
	}
	cert, err := Create(cmd.Context(), subject)
	if err != nil {
		return shared.Fail(err)
	}
	listcertscmd.PrintCertificate(cmd.OutOrStdout(), cert)
	return nil
}

// Create generates an RSA key pair and self-signed SHA-256 code-signing
// certificate and installs it into the current user's personal store.
func Create(ctx context.Context, subject string) (*certstore.Certificate, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if strings.TrimSpace(subject) == "" {
		return nil, shared.Exit(exitBadArgs, errors.New("subject name must not be empty"))
	}
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	der, err := x509tools.MakeCodeSigningCert(rand.Reader, key, subject)
	if err != nil {
		return nil, err
	}
	store, err := OpenStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	cert, err := store.ImportSelfSigned(ctx, key, der)
	if err != nil {
		return nil, err
	}
	log.Info().Str("subject", subject).Str("thumbprint", cert.Thumbprint).Msg("certificate created")
	return cert, nil
}
