// Command vnetcore runs the topology-to-virtual-network setup core.
package main

import "github.com/vnetcore/vnetcore/internal/cli"

func main() {
	cli.Execute()
}
