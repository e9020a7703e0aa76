package main

import "github.com/mcoot/mintworks-go/internal/cli"

func main() {
	cli.Execute()
}
