package main

import "sportsreg/cmd/sportsreg/commands"

func main() {
	commands.Execute()
}
