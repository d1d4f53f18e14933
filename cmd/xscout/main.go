package main

import (
	"xscout/cmd/cmd"
)

func main() {
	cmd.Execute()
}
