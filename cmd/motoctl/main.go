package main

import "github.com/motomarkt/motomarkt-go/cmd/motoctl/cmd"

func main() {
	cmd.Execute()
}
