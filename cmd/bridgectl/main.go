package main

import "coquiz/cmd/bridgectl/command"

func main() {
	command.Execute()
}
