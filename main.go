package main

import "github.com/KaramelBytes/cmpds-cli/cmd"

func main() {
	cmd.Execute()
}
