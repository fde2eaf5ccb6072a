package main

import "github.com/goliatone/go-authgate/cmd/authgate/cmd"

func main() {
	cmd.Execute()
}
