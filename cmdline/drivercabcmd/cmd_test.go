package drivercabcmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
	"github.com/patrickwbarnes/authenticode-scripts/lib/drivercab"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitInvalidSource, ExitCodeFor(fmt.Errorf("%w: no drivers", drivercab.ErrInvalidSource)))
	assert.Equal(t, ExitBadInf, ExitCodeFor(fmt.Errorf("%w: widget", drivercab.ErrBadInf)))
	assert.Equal(t, ExitCabTool, ExitCodeFor(fmt.Errorf("%w: exit status 1", drivercab.ErrCabTool)))
	assert.Equal(t, shared.ExitUnhandled, ExitCodeFor(errors.New("something else")))
}
