package main

import "github.com/graftkit/graft/cmd"

func main() {
	cmd.Execute()
}
