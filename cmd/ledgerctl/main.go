package main

import "github.com/dafibh/ledger/ledger-backend/cmd/ledgerctl/commands"

func main() {
	commands.Execute()
}
