package main

import "github.com/greenloop/ecopickup/cmd"

func main() {
	cmd.Execute()
}
