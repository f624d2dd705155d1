// Command powcarbon simulates a proof-of-work mining network and reports the
// carbon footprint of its blocks and transactions. CLI handling lives in cmd.
package main

import "github.com/powcarbon/powcarbon/cmd"

func main() {
	cmd.Execute()
}
