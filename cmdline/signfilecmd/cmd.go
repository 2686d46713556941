package signfilecmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
	"github.com/patrickwbarnes/authenticode-scripts/lib/atomicfile"
	"github.com/patrickwbarnes/authenticode-scripts/lib/certstore"
	"github.com/patrickwbarnes/authenticode-scripts/lib/procutil"
	"github.com/patrickwbarnes/authenticode-scripts/lib/winsdk"
	"github.com/patrickwbarnes/authenticode-scripts/lib/x509tools"
)

// Exit codes documented for the signer.
const (
	ExitBadArgs  = 1
	ExitNoCert   = 2
	ExitSignFail = 3
)

// DefaultTimestampURL is the RFC 3161 server used when none is configured.
const DefaultTimestampURL = "http://timestamp.digicert.com"

// IntermediateFile is where the issuer certificate is exported for
// signtool's additional-certificate argument.
const IntermediateFile = "intermediate.cer"

var Command = &cobra.Command{
	Use:               "signfile <file>",
	Short:             "Authenticode-sign a file with a certificate from the system store",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: shared.InitConfig,
	RunE:              signCmd,
	SilenceUsage:      true,
}

var (
	argDigest       string
	argTimestampURL string
	argThumbprint   string
	argSdkDir       string
)

// OpenStore is replaced by tests.
var OpenStore = certstore.Open

func init() {
	shared.Register(Command)
	Command.Flags().StringVarP(&argDigest, "digest", "d", "sha256", "Hash algorithm (only sha256 is supported)")
	Command.Flags().StringVarP(&argTimestampURL, "timestamp-url", "t", "", "RFC 3161 timestamp server URL")
	Command.Flags().StringVarP(&argThumbprint, "thumbprint", "T", "", "Select the signing certificate by thumbprint")
	Command.Flags().StringVar(&argSdkDir, "sdk-dir", "", "Windows SDK tool directory (default: auto-detect)")
}

// Options carries one signing request.
type Options struct {
	File         string
	TimestampURL string
	Thumbprint   string
	SignTool     string
	Select       Selector
	Run          func(ctx context.Context, argv []string) (string, error)
}

func signCmd(cmd *cobra.Command, args []string) error {
	file := args[0]
	if _, err := os.Stat(file); err != nil {
		return shared.Fail(shared.Exit(ExitBadArgs, fmt.Errorf("target file: %w", err)))
	}
	if argDigest != "sha256" {
		return shared.Fail(shared.Exit(ExitBadArgs, fmt.Errorf("unsupported hash algorithm %q, only sha256 is supported", argDigest)))
	}
	timestampURL := argTimestampURL
	if timestampURL == "" {
		timestampURL = shared.CurrentConfig.TimestampURL
	}
	if timestampURL == "" {
		timestampURL = DefaultTimestampURL
	}
	sdkDir := argSdkDir
	if sdkDir == "" {
		sdkDir = shared.CurrentConfig.SdkDir
	}
	resolver := &winsdk.Resolver{Dir: sdkDir}
	signtool, err := resolver.Tool("signtool.exe")
	if err != nil {
		return shared.Fail(err)
	}
	store, err := OpenStore()
	if err != nil {
		return shared.Fail(err)
	}
	defer store.Close()
	opts := Options{
		File:         file,
		TimestampURL: timestampURL,
		Thumbprint:   argThumbprint,
		SignTool:     signtool,
	}
	return shared.Fail(Sign(cmd.Context(), store, opts))
}

// Sign resolves the certificate, exports the intermediate chain if needed,
// and invokes the signing tool.
func Sign(ctx context.Context, store certstore.Store, opts Options) error {
	certs, err := store.List(ctx)
	if err != nil {
		return err
	}
	cert, err := selectCertificate(certs, opts)
	if err != nil {
		return err
	}
	log.Info().
		Str("subject", cert.Cert.Subject.String()).
		Str("thumbprint", cert.Thumbprint).
		Msg("signing certificate selected")

	argv := []string{opts.SignTool, "sign", "/v", "/fd", "sha256"}
	if cert.Location == certstore.LocalMachine {
		argv = append(argv, "/sm")
	}
	argv = append(argv, "/sha1", cert.Thumbprint)
	if !x509tools.SelfSigned(cert.Cert) {
		intermediate, err := exportIntermediate(certs, cert)
		if err != nil {
			return err
		}
		if intermediate != "" {
			argv = append(argv, "/ac", intermediate)
		}
	}
	argv = append(argv, "/tr", opts.TimestampURL, "/td", "sha256", opts.File)

	run := opts.Run
	if run == nil {
		run = runTool
	}
	output, err := run(ctx, argv)
	if err != nil {
		return shared.Exit(ExitSignFail, fmt.Errorf("signing failed: %s\n%s", err, output))
	}
	log.Info().Str("file", opts.File).Msg("file signed")
	return nil
}

func selectCertificate(certs []*certstore.Certificate, opts Options) (*certstore.Certificate, error) {
	matched := certs
	if opts.Thumbprint != "" {
		matched = certstore.FilterByThumbprint(certs, opts.Thumbprint)
	}
	switch len(matched) {
	case 0:
		return nil, shared.Exit(ExitNoCert, errors.New("no matching code-signing certificate found"))
	case 1:
		return matched[0], nil
	}
	choose := opts.Select
	if choose == nil {
		choose = promptSelect
	}
	return choose(matched)
}

// exportIntermediate writes the issuer's certificate next to the working
// directory for signtool's /ac argument. A missing issuer is not fatal;
// signtool can often build the chain on its own.
func exportIntermediate(certs []*certstore.Certificate, leaf *certstore.Certificate) (string, error) {
	issuer, err := certstore.FindIssuer(certs, leaf)
	if err != nil {
		log.Warn().
			Str("issuer", leaf.Cert.Issuer.String()).
			Msg("issuer certificate not found in store; signing without intermediate")
		return "", nil
	}
	if err := atomicfile.WriteFile(IntermediateFile, issuer.Cert.Raw); err != nil {
		return "", err
	}
	log.Debug().Str("subject", issuer.Cert.Subject.String()).Str("file", IntermediateFile).Msg("exported intermediate certificate")
	return IntermediateFile, nil
}

func runTool(ctx context.Context, argv []string) (string, error) {
	proc := procutil.CommandContext(ctx, argv)
	log.Debug().Str("cmdline", proc.FormatCmdline()).Msg("invoking signtool")
	err := proc.Run()
	return proc.Output, err
}
