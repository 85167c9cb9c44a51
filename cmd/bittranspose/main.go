package main

import "github.com/tuomass/bittranspose-go/internal/cli"

func main() {
	cli.Execute()
}
