package main

import (
	"github.com/patrickwbarnes/authenticode-scripts/cmdline/signfilecmd"
	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
)

func main() {
	shared.Main(signfilecmd.Command)
}
