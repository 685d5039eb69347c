package main

import "github.com/example/little-lemon/cmd"

func main() {
	cmd.Execute()
}
