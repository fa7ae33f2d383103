package main

import "github.com/philipparndt/gopano/cmd"

func main() {
	cmd.Execute()
}
