package main

import "github.com/yumyai/sangercheck/cmd"

func main() {
	cmd.Execute()
}
