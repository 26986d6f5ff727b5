package main

import "github.com/esctools/cmd"

func main() {
	cmd.Execute()
}
