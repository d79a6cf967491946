package main

import "github.com/blogql/blogql/cmd"

func main() {
	cmd.Execute()
}
