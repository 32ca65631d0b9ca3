package main

import "github.com/OpenTraceLab/OpenTraceTMC/cmd/tmc/cmd"

func main() {
	cmd.Execute()
}
