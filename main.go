package main

import "ConcertHub/cmd"

func main() {
	cmd.Execute()
}
