/*
Package ports defines the driven ports (interfaces) of the orchestrator.

These interfaces decouple the command building logic from the process that runs
the external tool and from where operation results are kept.

# Key Interfaces

  - Executor: runs one fully formed command line and returns its captured text.
  - ResultStore: persists a Record per operation (memory, file or Redis).
  - DistributedLocker: serializes work on shared output paths across replicas.
*/
package ports
