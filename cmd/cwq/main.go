package main

import "github.com/dzjyyds666/cwq/cmd"

func main() {
	cmd.Execute()
}
