package main

import "vendsync/cmd"

func main() {
	cmd.Execute()
}
