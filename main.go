package main

import "github.com/emrgen/relstage/cmd"

func main() {
	cmd.Execute()
}
