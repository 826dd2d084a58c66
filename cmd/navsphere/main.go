// Command navsphere manages a NavSphere navigation store.
package main

import "github.com/mesh-intelligence/navsphere/internal/cli"

func main() {
	cli.Execute()
}
