package main

import (
	"github.com/patrickwbarnes/authenticode-scripts/cmdline/drivercabcmd"
	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
)

func main() {
	shared.Main(drivercabcmd.Command)
}
