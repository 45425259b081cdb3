package main

import "github.com/vibast-solutions/ms-go-invoicing/cmd"

func main() {
	cmd.Execute()
}
