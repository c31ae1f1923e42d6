package main

import "gateworks-backend/cmd"

func main() {
	cmd.Execute()
}
