/*
Package domain contains the data model shared by every scadwrap component.

It is kept free of I/O: the types here describe what goes into an OpenSCAD
invocation and what comes back out of it, while reading and writing files is
left to the ephemeral and summary packages.

# Key Entities

  - ExportFormat: the closed set of output representations and their file extensions.
  - ParameterSet: the versioned parameter file consumed through `-p`/`-P`.
  - ParameterInput: one of three ways a caller may hand parameters to an operation.
  - Summary: the statistics document written by `--summary-file`.
  - ParameterDefinition: the customizer description written by `--export-format param`.
*/
package domain
