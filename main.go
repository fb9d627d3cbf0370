package main

import "github.com/nikogura/learning-designer/cmd"

func main() {
	cmd.Execute()
}
