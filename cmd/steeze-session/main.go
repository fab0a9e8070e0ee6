package main

import "github.com/joeydtaylor/steeze-session/cmd/steeze-session/cmd"

func main() {
	cmd.Execute()
}
