package main

import "github.com/josephlewis42/jobsh/cmd"

func main() {
	cmd.Execute()
}
