package main

import (
	"github.com/patrickwbarnes/authenticode-scripts/cmdline/listcertscmd"
	"github.com/patrickwbarnes/authenticode-scripts/cmdline/shared"
)

func main() {
	shared.Main(listcertscmd.Command)
}
