package drivercabcmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
	"github.com/patrickwbarnes/authenticode-scripts/lib/drivercab"
	"github.com/patrickwbarnes/authenticode-scripts/lib/winsdk"
)

// Exit codes documented for the packager.
const (
	ExitInvalidSource = 2
	ExitBadInf        = 3
	ExitCabTool       = 4
)

var Command = &cobra.Command{
	Use:   "drivercab <source-dir>",
	Short: "Package a directory of drivers into a cabinet archive",
	Long: `Package a directory of drivers into a cabinet archive for submission
to an attestation signing service. Each driver must live in its own
subdirectory containing exactly one INF file; missing or stale security
catalogs are generated with Inf2Cat before the cabinet is built.`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: shared.InitConfig,
	RunE:              packCmd,
	SilenceUsage:      true,
}

var (
	argOutput string
	argOsSpec string
	argSdkDir string
)

func init() {
	shared.Register(Command)
	Command.Flags().StringVarP(&argOutput, "output", "o", drivercab.CabName, "Destination path of the cabinet archive")
	Command.Flags().StringVar(&argOsSpec, "os", "", "Inf2Cat OS specification (default 10_X64)")
	Command.Flags().StringVar(&argSdkDir, "sdk-dir", "", "Windows SDK tool directory (default: auto-detect)")
}

func packCmd(cmd *cobra.Command, args []string) error {
	source := args[0]
	if info, err := os.Stat(source); err != nil || !info.IsDir() {
		return shared.Fail(shared.Exit(ExitInvalidSource,
			fmt.Errorf("%w: %s is not a directory", drivercab.ErrInvalidSource, source)))
	}
	osSpec := argOsSpec
	if osSpec == "" {
		osSpec = shared.CurrentConfig.Inf2CatOS
	}
	if osSpec == "" {
		osSpec = "10_X64"
	}
	sdkDir := argSdkDir
	if sdkDir == "" {
		sdkDir = shared.CurrentConfig.SdkDir
	}
	resolver := &winsdk.Resolver{Dir: sdkDir}
	inf2cat, err := resolver.Tool("inf2cat.exe")
	if err != nil {
		return shared.Fail(err)
	}
	makecab, err := winsdk.MakeCab()
	if err != nil {
		return shared.Fail(err)
	}
	log.Debug().Str("inf2cat", inf2cat).Str("makecab", makecab).Msg("resolved tools")
	packager := &drivercab.Packager{
		Source:  source,
		Dest:    argOutput,
		OSSpec:  osSpec,
		Inf2Cat: inf2cat,
		MakeCab: makecab,
	}
	if err := packager.Pack(cmd.Context()); err != nil {
		return shared.Fail(shared.Exit(ExitCodeFor(err), err))
	}
	return nil
}

// ExitCodeFor maps packager failures to the documented exit codes.
func ExitCodeFor(err error) int {
	switch {
	case errors.Is(err, drivercab.ErrInvalidSource):
		return ExitInvalidSource
	case errors.Is(err, drivercab.ErrBadInf):
		return ExitBadInf
	case errors.Is(err, drivercab.ErrCabTool):
		return ExitCabTool
	default:
		return shared.ExitUnhandled
	}
}
