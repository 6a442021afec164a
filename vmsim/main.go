// Command vmsim simulates the address translation of a virtual memory
// manager over an address trace.
package main

import "github.com/sarchlab/vmsim/vmsim/cmd"

func main() {
	cmd.Execute()
}
