package main

import "github.com/agentic-research/assetpairs/cmd"

func main() {
	cmd.Execute()
}
