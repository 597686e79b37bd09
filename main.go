package main

import "github.com/mentorhub/datastore/cmd"

func main() {
	cmd.Execute()
}
