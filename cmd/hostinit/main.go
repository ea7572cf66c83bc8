package main

import "github.com/hostinit/hostinit/cmd"

func main() {
	cmd.Execute()
}
