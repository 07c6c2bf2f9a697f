package main

import "github.com/clouide/clouide/internal/cmd"

func main() {
	cmd.Execute()
}
