/*
Copyright © 2023 Glossopoeia
*/
package main

import "github.com/glossopoeia/vmheap/cmd"

func main() {
	cmd.Execute()
}
