package main

import "codequest/cmd/cq/root"

func main() {
	root.Execute()
}
