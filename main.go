package main

import "github.com/chrisdamba/foodrollup/cmd"

func main() {
	cmd.Execute()
}
