package main

import "inventree-connect/cmd"

func main() {
	cmd.Execute()
}
