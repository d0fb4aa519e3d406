package main

import "github.com/KaramelBytes/mallseg-cli/cmd"

func main() {
	cmd.Execute()
}
