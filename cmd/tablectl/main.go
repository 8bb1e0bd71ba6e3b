// Command tablectl applies declarative table definitions to a table service.
package main

import "github.com/mesh-intelligence/tablectl/internal/cli"

func main() {
	cli.Execute()
}
