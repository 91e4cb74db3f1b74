package main

import "github.com/gaurav-prasanna/rankpipe/cmd"

func main() {
	cmd.Execute()
}
