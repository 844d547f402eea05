package main

import "github.com/ledgerline/dashboard/cmd/ledgerctl/commands"

func main() {
	commands.Execute()
}
