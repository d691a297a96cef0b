package main

import "github.com/nepochemu/ytm/cmd"

func main() {
	cmd.Execute()
}
