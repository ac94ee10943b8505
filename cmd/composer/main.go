// Command composer hosts a declarative UI composer. It serves the catalog
// and displayed output over HTTP, or attaches to a host over stdio.
package main

func main() {
	Execute()
}
