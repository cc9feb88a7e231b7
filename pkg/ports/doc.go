/*
Package ports defines the driven ports (interfaces) for the sceneflow orchestrator.

These interfaces decouple the core logic from external implementations, allowing the
orchestrator to drive any host runtime's scene loader and to record transition history in
various storage backends.

# Key Interfaces

  - SceneLoader: The host's asynchronous scene load/unload primitive.
  - LoadHandle: An in-flight host load with its deferred activation gate.
  - TransitionJournal: Responsible for persisting finished transition records.
*/
package ports
