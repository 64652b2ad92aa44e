package main

import "github.com/aussiebroadwan/hospitalauth/cmd/authctl/cmd"

func main() {
	cmd.Execute()
}
