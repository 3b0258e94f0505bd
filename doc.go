/*
Package portscope inspects the output ports of procedural graph nodes (Bifrost graph shapes in Maya) and reduces their data to a table with summary statistics.

It walks the host's attribute graph, telling scalar, multi-indexed and nested multi-indexed ports apart, normalizes every leaf into a scalar or a tuple, and reports the port type, the length of the first column and its component-wise minimum and maximum. Position and matrix values can be turned into markers (locators) in the host scene.

# Concept

The host application is reached through the ports.Host interface (Hexagonal Architecture). The commandport adapter talks to a live Maya session over its command port; the memory adapter serves scenes described in YAML, which is what tests and offline inspection use. The core holds no state between calls: every call re-reads the host.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/portscope"
	)

	func main() {
		insp, err := portscope.New("./scene.yaml")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		ports, err := insp.ListPorts(ctx, "bifrostGraphShape1")
		if err != nil {
			log.Fatal(err)
		}

		for _, port := range ports {
			result, err := insp.Extract(ctx, "bifrostGraphShape1", port)
			if err != nil {
				log.Fatal(err)
			}
			if result == nil {
				continue // no data
			}
			fmt.Println(port, result.PlugType, result.DataLength, result.MinValue, result.MaxValue)
		}
	}

# Surfaces

The portscope CLI renders results as tables, CSV, markdown or JSON, serves an HTTP API with viewer sessions (see pkg/adapters/http) and exposes the same operations as MCP tools (see pkg/adapters/mcp).
*/
package portscope
