/*
Package scadwrap orchestrates invocations of the OpenSCAD command-line tool.

It builds reproducible command lines from typed configuration, hands the tool
its parameters through temporary files that never collide between concurrent
calls, and turns the files the tool writes back into structured results.

# Concept

A Client is bound to one model file and one immutable options.Options value.
Every operation follows the same linear sequence:

  - Normalize the parameter input (an existing file, an in-memory set or a flat key/value list) into one file on disk.
  - Derive the output path and allocate a unique summary file.
  - Serialize the operation's flags into a single command string.
  - Delegate the command to the injected ports.Executor.
  - Collect and delete the summary, then delete every temporary file it created.

Caller-owned parameter files are never touched. Temporary files are removed on
every path, including executor failures.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/yannickbattail/scadwrap"
		"github.com/yannickbattail/scadwrap/pkg/adapters/process"
		"github.com/yannickbattail/scadwrap/pkg/domain"
		"github.com/yannickbattail/scadwrap/pkg/options"
	)

	func main() {
		opts := options.Default()
		opts.OutputDir = "out"

		client, err := scadwrap.New("test3d.scad", opts, process.NewRunner())
		if err != nil {
			log.Fatal(err)
		}

		res, err := client.Export3D(context.Background(),
			domain.FileInput("test3d.json", "all_20"), domain.FormatSTL)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s (%d facets)", res.File, res.Summary.Geometry.Facets)
	}

The tool is never retried. A failure is surfaced to the caller with the
captured output of the tool.
*/
package scadwrap
