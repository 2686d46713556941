package procutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCmdline(t *testing.T) {
	cmd := CommandContext(context.Background(), []string{
		"signtool.exe", "sign", "/ac", `C:\certs\my issuer.cer`, "driver.sys",
	})
	assert.Equal(t, `signtool.exe sign /ac "C:\certs\my issuer.cer" driver.sys`, cmd.FormatCmdline())
}

func TestExitCodeNonExit(t *testing.T) {
	assert.Equal(t, -1, ExitCode(errors.New("not an exit error")))
	assert.Equal(t, -1, ExitCode(nil))
}
