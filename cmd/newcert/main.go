package main

import (
	"github.com/patrickwbarnes/authenticode-scripts/cmdline/newcertcmd"
	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
)

func main() {
	shared.Main(newcertcmd.Command)
}
