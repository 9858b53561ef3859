package main

import "github.com/agonsep/21stCentury/internal/cli/cmd"

func main() {
	cmd.Execute()
}
