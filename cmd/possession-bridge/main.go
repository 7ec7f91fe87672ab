package main

import "github.com/Valley1051/VL2025.12.19/cmd/possession-bridge/cmd"

func main() {
	cmd.Execute()
}
