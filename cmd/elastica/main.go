package main

import "github.com/analogrelay/elastica-interop/cmd/elastica/cmd"

func main() {
	cmd.Execute()
}
