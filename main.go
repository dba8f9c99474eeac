package main

import "github.com/tenangdev/leave-management/cmd"

func main() {
	cmd.Execute()
}
