package main

import (
	"github.com/oshokin/ssms-extension-updater/cmd/ssms-extension-updater/cmd"
)

func main() {
	cmd.Execute()
}
